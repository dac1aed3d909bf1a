package pkgcache

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// PackageNode represents one directory holding a package descriptor.
// Nodes are built only by the Cache; exactly one node exists per
// canonical path for the lifetime of a cache instance.
type PackageNode struct {
	// Descriptor is the parsed package.json, or a synthesized placeholder
	// when the file was missing or unparseable.
	Descriptor *Descriptor

	// Role is the classification the cache assigned from the descriptor.
	Role Role

	// IsRoot marks the designated traversal root. Roots additionally
	// resolve devDependencies.
	IsRoot bool

	// Valid turns false when setup hit a problem: missing directory,
	// bad descriptor, or a missing addon entry point. Unresolved
	// dependencies do not affect validity.
	Valid bool

	// Dependencies and DevDependencies map declared names to the packages
	// the resolution pass located. Names that were not found are absent
	// here and listed in a single unresolved diagnostic instead.
	Dependencies    map[string]*PackageNode
	DevDependencies map[string]*PackageNode

	// InRepoAddons holds packages loaded from the descriptor's
	// framework.paths entries, sorted by name.
	InRepoAddons []*PackageNode

	// NodeModules is this package's own node_modules listing. It is the
	// shared NullListing when the role rules out dependents or the
	// directory is absent; it is never nil after loading.
	NodeModules *Listing

	path      string
	ledger    Ledger
	processed bool
}

// CanonicalPath returns the symlink-resolved directory path that keys
// this node in the cache. Immutable after creation.
func (n *PackageNode) CanonicalPath() string { return n.path }

// Name returns the descriptor name.
func (n *PackageNode) Name() string { return n.Descriptor.Name }

// Processed reports whether the dependency-resolution pass has run for
// this node. Resolution runs exactly once per node.
func (n *PackageNode) Processed() bool { return n.processed }

// AddError records a diagnostic on the node.
func (n *PackageNode) AddError(kind Kind, payload any) {
	n.ledger.Add(kind, payload)
}

// HasErrors reports whether any diagnostics were recorded.
func (n *PackageNode) HasErrors() bool { return n.ledger.HasErrors() }

// Errors returns the recorded diagnostics in order.
func (n *PackageNode) Errors() []Diagnostic { return n.ledger.Entries() }

// resolveDeclared resolves a declared name→version mapping. Each name is
// checked against the node's own node_modules listing first; only on a
// miss does the cache's upward search run, starting from the node's
// parent directory. Found names go into the returned mapping; missing
// names are recorded as one combined diagnostic of the given kind.
func (n *PackageNode) resolveDeclared(c *Cache, declared map[string]string, kind Kind) (map[string]*PackageNode, error) {
	if len(declared) == 0 {
		return nil, nil
	}
	found := make(map[string]*PackageNode, len(declared))
	var missing []string
	for _, name := range slices.Sorted(maps.Keys(declared)) {
		if pkg := n.NodeModules.FindPackage(name); pkg != nil {
			found[name] = pkg
			continue
		}
		pkg, err := c.FindPackage(name, filepath.Dir(n.path))
		if err != nil {
			return nil, err
		}
		if pkg != nil {
			found[name] = pkg
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		n.AddError(kind, missing)
	}
	return found, nil
}

// addInRepoAddons merges pkgs into the node's addon list. Re-added
// packages move to the end before the list is re-sorted by name.
func (n *PackageNode) addInRepoAddons(pkgs ...*PackageNode) {
	n.InRepoAddons = appendUnique(n.InRepoAddons, pkgs...)
	sortByName(n.InRepoAddons)
}

// ValidPackages filters pkgs down to the valid subset, preserving order.
func ValidPackages(pkgs []*PackageNode) []*PackageNode {
	var out []*PackageNode
	for _, p := range pkgs {
		if p.Valid {
			out = append(out, p)
		}
	}
	return out
}

// InvalidPackages filters pkgs down to the invalid subset, preserving order.
func InvalidPackages(pkgs []*PackageNode) []*PackageNode {
	var out []*PackageNode
	for _, p := range pkgs {
		if !p.Valid {
			out = append(out, p)
		}
	}
	return out
}

// appendUnique appends pkgs to dst with last-write-wins ordering: a
// package already present is removed from its old position so the new
// append puts it at the end.
func appendUnique(dst []*PackageNode, pkgs ...*PackageNode) []*PackageNode {
	for _, p := range pkgs {
		if i := slices.Index(dst, p); i >= 0 {
			dst = slices.Delete(dst, i, i+1)
		}
		dst = append(dst, p)
	}
	return dst
}

// sortByName sorts pkgs case-sensitively by package name. Packages
// without a name sort before named ones and keep their relative order.
func sortByName(pkgs []*PackageNode) {
	slices.SortStableFunc(pkgs, func(a, b *PackageNode) int {
		an, bn := a.Name(), b.Name()
		switch {
		case an == "" && bn == "":
			return 0
		case an == "":
			return -1
		case bn == "":
			return 1
		}
		return strings.Compare(an, bn)
	})
}
