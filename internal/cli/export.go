package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pkgscout/pkgscout/pkg/graphio"
)

// newExportCmd creates the export command: scan a tree and write the
// resulting graph as JSON.
func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Export the package graph as JSON",
		Long: `Export scans the project rooted at dir and writes the resulting graph
(packages, node_modules listings, and dependency edges) as JSON to the
output file, or stdout when none is given. Each export carries a fresh
scan identifier.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(".")
			if err != nil {
				return err
			}
			dir := cfg.Scan.Root
			if len(args) == 1 {
				dir = args[0]
			}

			cache, root, err := loadGraph(cmd.Context(), dir)
			if err != nil {
				return err
			}
			g := graphio.FromCache(cache, root)

			if output == "" {
				return graphio.WriteJSON(g, os.Stdout)
			}
			if err := graphio.ExportJSON(g, output); err != nil {
				return err
			}
			printSuccess("Exported %d nodes", len(g.Nodes))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
