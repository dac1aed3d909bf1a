package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pkgerrors "github.com/pkgscout/pkgscout/pkg/errors"
	"github.com/pkgscout/pkgscout/pkg/pkgcache"
)

// newScanCmd creates the scan command: walk a project tree, print the
// graph summary, and list every entry that accumulated diagnostics.
func newScanCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a project tree and report its package graph",
		Long: `Scan walks the project rooted at dir (default: the scan.root setting from
.pkgscout.toml, else the current directory), builds the package graph, and
prints a summary followed by every package or node_modules listing that
recorded diagnostics.

With --strict the command exits non-zero when any diagnostics were found.`,
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
			if !cmd.Flags().Changed("strict") {
				strict = cfg.Scan.Strict
			}
			return runScan(cmd.Context(), dir, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when diagnostics were recorded")
	return cmd
}

func runScan(ctx context.Context, dir string, strict bool) error {
	cache, root, err := loadGraph(ctx, dir)
	if err != nil {
		return err
	}

	packages, listings, edges := countGraph(cache)
	printSuccess("Scanned %s", styleValue.Render(root.CanonicalPath()))
	printDetail("%d packages · %d node_modules listings · %d dependency edges", packages, listings, edges)

	errored := cache.ErroredEntries()
	if len(errored) == 0 {
		printInfo("No problems found")
		return nil
	}

	fmt.Println()
	printWarning("%d entries with problems", len(errored))
	for _, entry := range errored {
		printInfo("%s", styleValue.Render(entry.CanonicalPath()))
		for _, d := range entry.Errors() {
			printDetail("%s", describeDiagnostic(d))
		}
	}

	if strict {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "scan found %d entries with problems", len(errored))
	}
	return nil
}

// loadGraph builds a cache and loads dir as the designated root, showing
// a spinner while the filesystem walk runs.
func loadGraph(ctx context.Context, dir string) (*pkgcache.Cache, *pkgcache.PackageNode, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cache := pkgcache.New(pkgcache.Options{
		Logger: func(msg string, args ...any) { logger.Debugf(msg, args...) },
	})

	sp := newSpinner(ctx, "Scanning "+dir)
	sp.start()
	root, err := cache.LoadPackage(dir, true)
	sp.stop()
	if err != nil {
		return nil, nil, err
	}

	packages, _, _ := countGraph(cache)
	prog.done(fmt.Sprintf("Scanned %d packages", packages))
	return cache, root, nil
}

// countGraph tallies package nodes, listings, and resolved edges.
func countGraph(c *pkgcache.Cache) (packages, listings, edges int) {
	for _, entry := range c.Entries() {
		switch e := entry.(type) {
		case *pkgcache.PackageNode:
			packages++
			edges += len(e.Dependencies) + len(e.DevDependencies)
		case *pkgcache.Listing:
			listings++
		}
	}
	return packages, listings, edges
}

// describeDiagnostic renders one ledger entry for terminal output.
func describeDiagnostic(d pkgcache.Diagnostic) string {
	switch d.Kind {
	case pkgcache.ErrDirectoryMissing:
		return fmt.Sprintf("directory missing or not a directory: %v", d.Payload)
	case pkgcache.ErrDescriptorMissing:
		return fmt.Sprintf("package.json not found: %v", d.Payload)
	case pkgcache.ErrDescriptorUnparseable:
		return fmt.Sprintf("package.json unparseable: %v", d.Payload)
	case pkgcache.ErrEntryPointMissing:
		return fmt.Sprintf("addon entry point missing: %v", d.Payload)
	case pkgcache.ErrDependenciesUnresolved:
		return "unresolved dependencies: " + joinNames(d.Payload)
	case pkgcache.ErrDevDependenciesUnresolved:
		return "unresolved devDependencies: " + joinNames(d.Payload)
	case pkgcache.ErrListingEntryMissing:
		return fmt.Sprintf("listing entry vanished during read: %v", d.Payload)
	default:
		return fmt.Sprintf("%s: %v", d.Kind, d.Payload)
	}
}

func joinNames(payload any) string {
	if names, ok := payload.([]string); ok {
		return strings.Join(names, ", ")
	}
	return fmt.Sprint(payload)
}
