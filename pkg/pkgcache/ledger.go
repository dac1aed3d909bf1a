package pkgcache

import "slices"

// Kind tags a non-fatal diagnostic recorded on a cache entry during
// traversal or dependency resolution.
type Kind string

// Diagnostic kinds. All are non-fatal: traversal continues and the
// diagnostic is attached to the nearest entry.
const (
	// ErrDirectoryMissing means a path expected to hold a package or a
	// node_modules listing does not exist or is not a directory.
	ErrDirectoryMissing Kind = "directory-missing"

	// ErrDescriptorMissing means a package directory exists but contains
	// no package.json.
	ErrDescriptorMissing Kind = "descriptor-missing"

	// ErrDescriptorUnparseable means package.json exists but failed to parse.
	ErrDescriptorUnparseable Kind = "descriptor-unparseable"

	// ErrEntryPointMissing means an addon or engine package declares an
	// entry-point file that does not exist.
	ErrEntryPointMissing Kind = "addon-entry-point-missing"

	// ErrDependenciesUnresolved collects every declared dependency name
	// that could not be located anywhere. One diagnostic per package.
	ErrDependenciesUnresolved Kind = "dependency-unresolved"

	// ErrDevDependenciesUnresolved is the devDependencies counterpart of
	// ErrDependenciesUnresolved. Only recorded on root packages.
	ErrDevDependenciesUnresolved Kind = "dev-dependency-unresolved"

	// ErrListingEntryMissing means a node_modules child seen during
	// enumeration vanished before it could be read.
	ErrListingEntryMissing Kind = "directory-listing-entry-missing"
)

// Diagnostic is one recorded problem. Payload carries kind-specific
// context: a path for missing directories and entry points, the parse
// error text for unparseable descriptors, and the sorted list of missing
// names for unresolved dependencies.
type Diagnostic struct {
	Kind    Kind
	Payload any
}

// Ledger is an ordered, append-only collection of diagnostics. The zero
// value is ready to use.
type Ledger struct {
	entries []Diagnostic
}

// Add appends a diagnostic to the ledger.
func (l *Ledger) Add(kind Kind, payload any) {
	l.entries = append(l.entries, Diagnostic{Kind: kind, Payload: payload})
}

// Entries returns the recorded diagnostics in insertion order.
func (l *Ledger) Entries() []Diagnostic {
	return slices.Clone(l.entries)
}

// HasErrors reports whether anything was recorded.
func (l *Ledger) HasErrors() bool {
	return len(l.entries) > 0
}

// Len returns the number of recorded diagnostics.
func (l *Ledger) Len() int {
	return len(l.entries)
}
