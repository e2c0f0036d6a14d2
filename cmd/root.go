package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "github.com/growlab/growlab-cli/internal/config"
	"github.com/growlab/growlab-cli/internal/dataset"
)

var (
	// Global flags (wired to config at load time)
	cfgFile     string
	flagDataDir string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "growlab",
	Short: "GrowLab CLI: analyze the four-school nutrient trial",
	Long: `GrowLab is the analysis backend for the school smart-farm trial: it loads
each school's environment CSV and the shared growth workbook, summarizes
growth against the target nutrient conductivity, and exports or serves
the results for the dashboard.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.growlab/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the uploaded data files (overrides config)")
}

func loadConfig() {
	// .env is optional; GROWLAB_* variables beat the config file either way.
	_ = godotenv.Load()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	if rootCmd.PersistentFlags().Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
}

// newStore builds a dataset store for the loaded configuration.
func newStore() (*dataset.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded (run 'growlab config init')")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return dataset.NewStore(cfg), nil
}

// printProblems reports recoverable load problems without failing the
// command. Sites that did load keep working.
func printProblems(cols ...*dataset.Collection) {
	for _, col := range cols {
		if col == nil {
			continue
		}
		for _, p := range col.Problems {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", p)
		}
	}
}
