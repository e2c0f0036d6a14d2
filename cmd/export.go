package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/growlab/growlab-cli/internal/dataset"
	"github.com/growlab/growlab-cli/internal/export"
)

var (
	exportKind   string
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <site>",
	Short: "Export one site's table to CSV or XLSX",
	Long: `Export writes a site's raw environment or growth table to a file,
byte-for-byte as loaded, Korean column headers included. The site may be
given by id (hanbit) or by name (한빛중학교). Without --output the file
lands in the working directory under the conventional download name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		site, ok := cfg.SiteByRef(args[0])
		if !ok {
			return fmt.Errorf("unknown site: %s", args[0])
		}
		kind, err := dataset.ParseKind(exportKind)
		if err != nil {
			return err
		}

		var col *dataset.Collection
		if kind == dataset.KindGrowth {
			col, err = store.Growth()
		} else {
			col, err = store.Environment()
		}
		if err != nil {
			return err
		}
		printProblems(col)

		t := col.Site(site.ID)
		if t == nil {
			return fmt.Errorf("no %s data for site %s", kind, site.ID)
		}

		path := exportOutput
		if path == "" {
			enc, err := export.ForFormat(exportFormat)
			if err != nil {
				return err
			}
			path = export.DownloadName(site.Name, kind, enc)
		}
		if err := export.WriteFile(t, path); err != nil {
			return err
		}
		fmt.Printf("✓ Exported %d rows to %s\n", t.Len(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportKind, "kind", "k", "growth", "dataset to export (environment or growth)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "output format when --output is not given (csv or xlsx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path; the extension picks the format")
}
