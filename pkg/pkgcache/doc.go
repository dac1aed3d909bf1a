// Package pkgcache builds an in-memory graph of the package layout of a
// Node-style project tree: every directory holding a package.json, every
// node_modules directory, and the dependency edges between them.
//
// The [Cache] is the entry point. Loading a root directory walks the tree
// once, deduplicating directories by their symlink-resolved canonical
// path, and then runs a single resolution pass that fills in dependency
// edges using the same upward node_modules search Node.js uses to locate
// modules. Scoped names ("@scope/pkg") are understood throughout.
//
// Failures are non-fatal by design: a missing package.json, a broken
// descriptor, or an unresolvable dependency is recorded on the nearest
// node's [Ledger] and traversal continues, so a mostly-usable graph and
// its diagnostics coexist. The only hard error [Cache.LoadPackage] can
// return is the programming-invariant violation of loading a path the
// table already holds as the other entry kind.
//
// Typical use:
//
//	c := pkgcache.New(pkgcache.Options{})
//	root, err := c.LoadPackage(dir, true)
//	if err != nil {
//	    return err
//	}
//	if c.HasErrors() {
//	    for _, e := range c.ErroredEntries() {
//	        // render e.Errors()
//	    }
//	}
package pkgcache
