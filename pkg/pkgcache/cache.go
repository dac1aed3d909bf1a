package pkgcache

import (
	"os"
	"path/filepath"

	pkgerrors "github.com/pkgscout/pkgscout/pkg/errors"
)

// Entry is anything held in the cache table: a *PackageNode or a *Listing.
type Entry interface {
	CanonicalPath() string
	HasErrors() bool
	Errors() []Diagnostic
}

// Options configures a Cache.
type Options struct {
	// Logger receives progress and problem messages. Optional.
	Logger func(string, ...any)
	// Classify maps a descriptor to its role. Defaults to Classify.
	Classify func(*Descriptor) Role
}

// WithDefaults returns a copy of Options with zero values replaced.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	if opts.Classify == nil {
		opts.Classify = Classify
	}
	return opts
}

// Cache builds and owns the package graph for a project tree. The table
// maps canonical (symlink-resolved) directory paths to entries; each
// distinct on-disk directory is represented by exactly one entry.
//
// The table follows a two-phase protocol: a package node is registered
// BEFORE its children are traversed, so cyclic references resolve to the
// already-registered node instead of re-traversing. Because of that
// ordering the cache is single-owner state and must not be shared across
// goroutines without external locking.
type Cache struct {
	opts    Options
	entries map[string]Entry
	order   []string
}

// New creates an empty cache.
func New(opts Options) *Cache {
	return &Cache{
		opts:    opts.WithDefaults(),
		entries: make(map[string]Entry),
	}
}

// register inserts an entry under its canonical path, preserving table order.
func (c *Cache) register(path string, e Entry) {
	c.entries[path] = e
	c.order = append(c.order, path)
}

// Lookup returns the entry cached under the given canonical path. It is
// an O(1) table lookup and never touches the filesystem.
func (c *Cache) Lookup(path string) (Entry, bool) {
	e, ok := c.entries[path]
	return e, ok
}

// Contains reports whether a canonical path is present in the table.
func (c *Cache) Contains(path string) bool {
	_, ok := c.entries[path]
	return ok
}

// Entries returns every cached entry in table (insertion) order.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, path := range c.order {
		out = append(out, c.entries[path])
	}
	return out
}

// ErroredEntries returns every entry with a non-empty ledger, in table order.
func (c *Cache) ErroredEntries() []Entry {
	var out []Entry
	for _, path := range c.order {
		if e := c.entries[path]; e.HasErrors() {
			out = append(out, e)
		}
	}
	return out
}

// HasErrors reports whether any cached entry recorded a diagnostic.
func (c *Cache) HasErrors() bool {
	for _, path := range c.order {
		if c.entries[path].HasErrors() {
			return true
		}
	}
	return false
}

// LoadPackage loads the package at dir and everything reachable from it.
// It is idempotent: a path whose node already completed resolution is
// returned unchanged. When isRoot is true the dependency-resolution pass
// runs over the whole table before returning, so the caller receives a
// fully edged graph.
//
// The error return is non-nil only for the fatal invariant violation of
// asking to load a path the table already holds as the other entry kind;
// every recoverable problem lands in a ledger instead.
func (c *Cache) LoadPackage(dir string, isRoot bool) (*PackageNode, error) {
	node, err := c.loadPackage(dir, isRoot)
	if err != nil {
		return nil, err
	}
	if isRoot {
		if err := c.resolveAll(); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (c *Cache) loadPackage(dir string, isRoot bool) (*PackageNode, error) {
	real, state := realDirPath(dir)

	if existing, ok := c.entries[real]; ok {
		node, ok := existing.(*PackageNode)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.ErrCodeInternal,
				"path already cached as a node_modules listing: %s", real)
		}
		return node, nil
	}

	node := &PackageNode{path: real, IsRoot: isRoot, Valid: true}
	// Two-phase: register before reading anything below this directory.
	c.register(real, node)

	if state != pathResolved {
		c.opts.Logger("package directory missing: %s", dir)
		node.Valid = false
		node.AddError(ErrDirectoryMissing, dir)
		node.Descriptor = placeholderDescriptor(real)
		node.Role = c.opts.Classify(node.Descriptor)
		node.NodeModules = NullListing
		return node, nil
	}

	c.readDescriptor(node, real)
	node.Role = c.opts.Classify(node.Descriptor)

	if node.Role.ValidatesEntryPoint() {
		entry := filepath.Join(real, node.Descriptor.EntryPoint())
		if _, st := realFilePath(entry); st != pathResolved {
			node.Valid = false
			node.AddError(ErrEntryPointMissing, entry)
		}
	}

	if fw := node.Descriptor.Framework; fw != nil && node.Role.SupportsDependents() {
		for _, rel := range fw.Paths {
			addon, err := c.loadPackage(filepath.Join(real, rel), false)
			if err != nil {
				return nil, err
			}
			node.addInRepoAddons(addon)
		}
	}

	if node.Role.SupportsDependents() || isRoot {
		listing, err := c.readNodeModules(filepath.Join(real, NodeModulesDirname))
		if err != nil {
			return nil, err
		}
		if listing == nil {
			listing = NullListing
		}
		node.NodeModules = listing
	} else {
		node.NodeModules = NullListing
	}

	return node, nil
}

// readDescriptor parses the node's package.json, falling back to a
// placeholder (and marking the node invalid) when it is absent or broken.
func (c *Cache) readDescriptor(node *PackageNode, dir string) {
	descPath := filepath.Join(dir, DescriptorFilename)
	desc, err := parseDescriptor(descPath)
	switch {
	case err == nil:
		node.Descriptor = desc
	case os.IsNotExist(err):
		node.Valid = false
		node.AddError(ErrDescriptorMissing, descPath)
		node.Descriptor = placeholderDescriptor(dir)
	default:
		node.Valid = false
		node.AddError(ErrDescriptorUnparseable, err.Error())
		node.Descriptor = placeholderDescriptor(dir)
	}
}

// readNodeModules returns the listing for a node_modules path, building
// and registering it on first encounter. An absent directory returns
// (nil, nil): non-existence during the upward search is expected, not
// exceptional. Children named with a leading "." or "_" are skipped,
// "@scope" children become nested listings, and children without their
// own descriptor file are silently ignored.
//
// The fully populated listing is registered before it is returned;
// pathologically self-referencing symlink structures are the caller's
// responsibility to avoid.
func (c *Cache) readNodeModules(dir string) (*Listing, error) {
	real, state := realDirPath(dir)

	if existing, ok := c.entries[real]; ok {
		listing, ok := existing.(*Listing)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.ErrCodeInternal,
				"path already cached as a package: %s", real)
		}
		return listing, nil
	}

	if state != pathResolved {
		return nil, nil
	}

	children, err := listChildren(real)
	if err != nil {
		// Raced with the filesystem between stat and read.
		return nil, nil
	}

	listing := newListing(real)
	for _, child := range children {
		name := child.Name()
		if len(name) == 0 || name[0] == '.' || name[0] == '_' {
			continue
		}
		childPath := filepath.Join(real, name)

		if name[0] == '@' {
			nested, err := c.readNodeModules(childPath)
			if err != nil {
				return nil, err
			}
			if nested == nil {
				listing.AddError(ErrListingEntryMissing, childPath)
				continue
			}
			_ = listing.AddEntry(name, nested)
			continue
		}

		if _, st := realFilePath(filepath.Join(childPath, DescriptorFilename)); st != pathResolved {
			continue
		}
		pkg, err := c.loadPackage(childPath, false)
		if err != nil {
			return nil, err
		}
		_ = listing.AddEntry(name, pkg)
	}

	c.register(real, listing)
	return listing, nil
}

// FindPackage implements the node-resolution search: starting at
// startDir, check the node_modules listing rooted at each level for the
// name, moving to the parent directory on a miss, until the filesystem
// root is reached. A relative start is resolved against the working
// directory first, so the walk always climbs the full ancestor chain.
// A start path itself named node_modules is searched directly. Listings
// not yet cached are built lazily, so a search can pull new subtrees
// into the cache as a side effect. Returns (nil, nil) when the name
// exists nowhere in the chain.
func (c *Cache) FindPackage(name, startDir string) (*PackageNode, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		nmDir := dir
		if filepath.Base(dir) != NodeModulesDirname {
			nmDir = filepath.Join(dir, NodeModulesDirname)
		}
		listing, err := c.readNodeModules(nmDir)
		if err != nil {
			return nil, err
		}
		if pkg := listing.FindPackage(name); pkg != nil {
			return pkg, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// resolveAll runs the dependency-resolution pass over every package node
// currently in the table. Resolution may itself discover new packages
// (the upward search pulls in subtrees outside a node's own hierarchy);
// the index loop picks those up too, and the processed guard keeps the
// pass at exactly once per node.
func (c *Cache) resolveAll() error {
	for i := 0; i < len(c.order); i++ {
		node, ok := c.entries[c.order[i]].(*PackageNode)
		if !ok {
			continue
		}
		if err := c.resolveNode(node); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) resolveNode(n *PackageNode) error {
	if n.processed {
		return nil
	}
	n.processed = true

	deps, err := n.resolveDeclared(c, n.Descriptor.Dependencies, ErrDependenciesUnresolved)
	if err != nil {
		return err
	}
	n.Dependencies = deps

	// Dev-only edges exist on the designated root alone.
	if n.IsRoot {
		devDeps, err := n.resolveDeclared(c, n.Descriptor.DevDependencies, ErrDevDependenciesUnresolved)
		if err != nil {
			return err
		}
		n.DevDependencies = devDeps
	}
	return nil
}
