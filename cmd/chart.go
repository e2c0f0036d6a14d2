package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/growlab/growlab-cli/internal/chart"
	"github.com/growlab/growlab-cli/internal/dataset"
	"github.com/growlab/growlab-cli/internal/utils"
)

var (
	chartField  string
	chartOutput string
)

var chartCmd = &cobra.Command{
	Use:   "chart <growth|environment|scatter>",
	Short: "Render a PNG chart of the trial data",
	Long: `Chart renders one of the dashboard views as a PNG: per-site mean bars
(growth), the measurement series of every site (environment), or mean
fresh weight against target conductivity (scatter).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}

		view := args[0]
		f, err := chartViewField(view)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		switch view {
		case "growth":
			col, err := store.Growth()
			if err != nil {
				return err
			}
			printProblems(col)
			err = chart.GrowthBars(col, cfg.Sites, f, &buf)
			if err != nil {
				return err
			}
		case "environment":
			col, err := store.Environment()
			if err != nil {
				return err
			}
			printProblems(col)
			err = chart.EnvironmentLines(col, cfg.Sites, f, &buf)
			if err != nil {
				return err
			}
		case "scatter":
			col, err := store.Growth()
			if err != nil {
				return err
			}
			printProblems(col)
			err = chart.ResponseScatter(col, cfg.Sites, f, &buf)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown chart view: %s (use growth, environment or scatter)", view)
		}

		path := chartOutput
		if path == "" {
			path = view + ".png"
		}
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Printf("✓ Wrote chart to %s\n", path)
		return nil
	},
}

// chartViewField picks the field to plot: the --field flag when given,
// otherwise the natural default for the view.
func chartViewField(view string) (dataset.Field, error) {
	if chartField != "" {
		return dataset.ParseField(chartField)
	}
	if view == "environment" {
		return dataset.FieldTemperature, nil
	}
	return dataset.FieldFreshWeight, nil
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartField, "field", "", "measurement to plot (defaults per view)")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "output path (default <view>.png)")
}
