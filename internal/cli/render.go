package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pkgerrors "github.com/pkgscout/pkgscout/pkg/errors"
	"github.com/pkgscout/pkgscout/pkg/graphio"
)

// newRenderCmd creates the render command: scan a tree and write the
// graph as Graphviz DOT or SVG.
func newRenderCmd() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
		listings bool
	)

	cmd := &cobra.Command{
		Use:   "render [dir]",
		Short: "Render the package graph as DOT or SVG",
		Long: `Render scans the project rooted at dir, converts the graph to Graphviz
DOT, and either writes the DOT source (--format dot) or renders it to
SVG in-process (--format svg, the default).`,
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
			if !cmd.Flags().Changed("format") {
				format = cfg.Render.Format
			}
			if !cmd.Flags().Changed("detailed") {
				detailed = cfg.Render.Detailed
			}
			if !cmd.Flags().Changed("listings") {
				listings = cfg.Render.Listings
			}

			cache, root, err := loadGraph(cmd.Context(), dir)
			if err != nil {
				return err
			}
			g := graphio.FromCache(cache, root)
			dot := graphio.ToDOT(g, graphio.DOTOptions{Detailed: detailed, Listings: listings})

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = graphio.RenderSVG(dot)
				if err != nil {
					return err
				}
			default:
				return pkgerrors.New(pkgerrors.ErrCodeInvalidFormat, "unknown format %q (want dot or svg)", format)
			}

			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %d nodes", len(g.Nodes))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", "svg", "output format: svg or dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include version, role, and validity in labels")
	cmd.Flags().BoolVar(&listings, "listings", false, "include node_modules listing nodes")
	return cmd
}
