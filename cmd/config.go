package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/growlab/growlab-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set GrowLab configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &cfgpkg.Global{
			DataDir:        "data",
			GrowthFile:     "생육데이터.xlsx",
			Sites:          cfgpkg.DefaultSites(),
			ListenAddr:     ":8091",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			LogLevel:       "info",
			LogFormat:      "text",
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Println("✓ Wrote default configuration")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("data_dir: %s\n", cfg.DataDir)
		fmt.Printf("growth_file: %s\n", cfg.GrowthFile)
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		if len(cfg.AllowedOrigins) > 0 {
			fmt.Printf("allowed_origins: %s\n", strings.Join(cfg.AllowedOrigins, ", "))
		}
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("log_format: %s\n", cfg.LogFormat)
		fmt.Println("sites:")
		for _, s := range cfg.Sites {
			fmt.Printf("  - %s: %s (EC %g dS/m, %s)\n", s.ID, s.Name, s.EC, s.EnvFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_dir":
			cfg.DataDir = val
		case "growth_file":
			cfg.GrowthFile = val
		case "listen_addr":
			cfg.ListenAddr = val
		case "allowed_origins":
			cfg.AllowedOrigins = splitList(val)
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "log_format":
			switch val {
			case "text", "json":
				cfg.LogFormat = val
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
