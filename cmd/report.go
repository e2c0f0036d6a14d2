package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/growlab/growlab-cli/internal/analysis"
	"github.com/growlab/growlab-cli/internal/utils"
)

var reportOutputPath string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize growth and environment across all sites",
	Long: `Report builds the full experiment summary: per-site metrics, pooled
statistics, and the best-performing conductivity by mean fresh weight.
Without --output the Markdown goes to stdout.`,
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

		rep, err := analysis.BuildReport(env, growth, cfg.Sites)
		if err != nil {
			return err
		}
		md := rep.Markdown()
		if reportOutputPath != "" {
			if err := utils.SafeWriteFile(reportOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("✓ Wrote report to %s\n", reportOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
}
