package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load all datasets and report what was found",
	Long: `Load reads every configured site's environment CSV plus the shared
growth workbook and reports row counts and problems. A missing or broken
per-site file is a warning; a missing growth workbook fails the command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		env, err := store.Environment()
		if err != nil {
			return err
		}
		growth, err := store.Growth()
		if err != nil {
			return err
		}
		printProblems(env, growth)

		fmt.Printf("✓ Environment data: %d/%d sites, %d rows\n",
			len(env.PresentSites(cfg.Sites)), len(cfg.Sites), env.Rows())
		fmt.Printf("✓ Growth data: %d/%d sites, %d rows\n",
			len(growth.PresentSites(cfg.Sites)), len(cfg.Sites), growth.Rows())
		snap := store.Snapshot()
		fmt.Printf("✓ Snapshot %s (loaded %s)\n", snap.ID, snap.LoadedAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
