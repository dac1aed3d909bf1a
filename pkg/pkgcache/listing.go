package pkgcache

import (
	"strings"

	pkgerrors "github.com/pkgscout/pkgscout/pkg/errors"
)

// NodeModulesDirname is the directory name searched for dependents.
const NodeModulesDirname = "node_modules"

// Listing represents one node_modules directory. Entries map a child name
// to either a *PackageNode or, for "@scope" children, a nested *Listing.
// Listings are built only by the Cache.
type Listing struct {
	path    string
	entries map[string]Entry
	ledger  Ledger
	null    bool
}

// NullListing is the shared immutable listing used when a package's role
// rules out dependents or when its node_modules directory is known to be
// absent. It has no entries, contributes no diagnostics, and rejects
// mutation. Compare against it by identity.
var NullListing = &Listing{null: true}

func newListing(path string) *Listing {
	return &Listing{path: path, entries: make(map[string]Entry)}
}

// CanonicalPath returns the listing's symlink-resolved directory path.
// The null listing has no path.
func (l *Listing) CanonicalPath() string { return l.path }

// IsNull reports whether this is the shared null listing.
func (l *Listing) IsNull() bool { return l.null }

// AddEntry records a named child. The null listing rejects mutation.
func (l *Listing) AddEntry(name string, entry Entry) error {
	if l.null {
		return pkgerrors.New(pkgerrors.ErrCodeInternal, "null node_modules listing is immutable")
	}
	l.entries[name] = entry
	return nil
}

// Entry returns the child recorded under name, if any.
func (l *Listing) Entry(name string) (Entry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// Len returns the number of recorded children.
func (l *Listing) Len() int { return len(l.entries) }

// FindPackage looks up a package by name. Scoped names ("@scope/pkg")
// resolve the scope as a nested listing and the remainder inside it.
// Returns nil when the name is not present.
func (l *Listing) FindPackage(name string) *PackageNode {
	if l == nil {
		return nil
	}
	if strings.HasPrefix(name, "@") {
		scope, rest, ok := strings.Cut(name, "/")
		if !ok {
			return nil
		}
		nested, _ := l.entries[scope].(*Listing)
		return nested.FindPackage(rest)
	}
	pkg, _ := l.entries[name].(*PackageNode)
	return pkg
}

// AddError records a diagnostic on the listing. The null listing rejects
// mutation.
func (l *Listing) AddError(kind Kind, payload any) {
	if l.null {
		return
	}
	l.ledger.Add(kind, payload)
}

// HasErrors reports whether any diagnostics were recorded.
func (l *Listing) HasErrors() bool { return l.ledger.HasErrors() }

// Errors returns the recorded diagnostics in order.
func (l *Listing) Errors() []Diagnostic { return l.ledger.Entries() }
