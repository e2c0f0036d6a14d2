package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/growlab/growlab-cli/internal/dataset"
	"github.com/growlab/growlab-cli/internal/utils"
)

var (
	sitesWithData bool
	sitesAsJSON   bool
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the configured research sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("no configuration loaded (run 'growlab config init')")
		}
		if sitesAsJSON {
			b, err := utils.PrettyJSON(cfg.Sites)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		if len(cfg.Sites) == 0 {
			fmt.Println("(no sites)")
			return nil
		}

		if !sitesWithData {
			for _, s := range cfg.Sites {
				fmt.Printf("- %s: %s (EC %g dS/m) %s\n", s.ID, s.Name, s.EC, s.EnvFile)
			}
			return nil
		}

		store, err := newStore()
		if err != nil {
			return err
		}
		env, err := store.Environment()
		if err != nil {
			return err
		}
		growth, growthErr := store.Growth()
		if growthErr != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", growthErr)
		}
		for _, s := range cfg.Sites {
			fmt.Printf("- %s: %s (EC %g dS/m) environment=%s growth=%s\n",
				s.ID, s.Name, s.EC, presence(env, s.ID), presence(growth, s.ID))
		}
		printProblems(env, growth)
		return nil
	},
}

func presence(col *dataset.Collection, siteID string) string {
	if t := col.Site(siteID); t != nil {
		return fmt.Sprintf("%d rows", t.Len())
	}
	return "missing"
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.Flags().BoolVar(&sitesWithData, "data", false, "also check which sites have data on disk")
	sitesCmd.Flags().BoolVar(&sitesAsJSON, "json", false, "print the configured sites as JSON")
}
