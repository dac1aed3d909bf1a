package cli

import (
	"github.com/spf13/cobra"

	pkgerrors "github.com/pkgscout/pkgscout/pkg/errors"
	"github.com/pkgscout/pkgscout/pkg/pkgcache"
)

// newFindCmd creates the find command: locate a package by name using
// the node-resolution upward search, without a prior full scan.
func newFindCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "find <name>",
		Short: "Locate a package by name via the node-resolution search",
		Long: `Find searches for a package the way Node.js would resolve a require:
check the node_modules directory at the start level, then walk parent
directories until the filesystem root. Scoped names (@scope/pkg) are
supported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := pkgerrors.ValidateNpmPackageName(name); err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			cache := pkgcache.New(pkgcache.Options{
				Logger: func(msg string, args ...any) { logger.Debugf(msg, args...) },
			})

			pkg, err := cache.FindPackage(name, from)
			if err != nil {
				return err
			}
			if pkg == nil {
				printError("%s not found from %s", name, from)
				return pkgerrors.New(pkgerrors.ErrCodeNotFound, "package %s not found", name)
			}

			printSuccess("%s", pkg.Name())
			printKeyValue("path", pkg.CanonicalPath())
			printKeyValue("version", pkg.Descriptor.Version)
			printKeyValue("role", pkg.Role.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", ".", "directory to start the search from")
	return cmd
}
