package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pkgscout/pkgscout/pkg/buildinfo"
)

// Execute runs the pkgscout CLI and returns an error if any command fails.
//
// The root command wires up all subcommands (scan, find, export, render,
// completion), configures logging based on --verbose, and attaches the
// logger to the command context so subcommands retrieve it with
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "pkgscout",
		Short:        "pkgscout maps the package layout of a Node-style project tree",
		Long: `pkgscout walks a JavaScript/Node-style project tree and builds a graph of
every package directory, every node_modules listing, and the dependency
edges between them, resolved with the same upward search Node.js uses.
Problems (missing descriptors, unresolvable dependencies) are collected
per package instead of aborting the walk.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newScanCmd())
	root.AddCommand(newFindCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
