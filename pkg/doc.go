// Package pkg provides the core libraries for pkgscout package-graph scanning.
//
// # Overview
//
// pkgscout builds an in-memory graph of a Node-style project tree: package
// directories, their package.json descriptors, their node_modules listings,
// and the dependency edges between them. The pkg directory is organized
// into three areas:
//
//  1. [pkgcache] - The graph cache: traversal, canonical-path deduplication,
//     role classification, and dependency resolution.
//  2. [graphio] - Serialization of a loaded graph (JSON, Graphviz DOT, SVG).
//  3. [errors] - Structured errors with machine-readable codes, plus package
//     name validation.
//
// # Architecture
//
// The typical data flow through pkgscout:
//
//	Project directory
//	         ↓
//	    [pkgcache] (walk tree, parse descriptors, resolve dependencies)
//	         ↓
//	    [graphio] (flatten to nodes and edges)
//	         ↓
//	    JSON/DOT/SVG output
//
// # Quick Start
//
// Scan a project and export its graph:
//
//	cache := pkgcache.New(pkgcache.Options{})
//	root, err := cache.LoadPackage("path/to/project", true)
//	if err != nil {
//	    return err
//	}
//	g := graphio.FromCache(cache, root)
//	graphio.ExportJSON(g, "graph.json")
//
// Problems found during the walk (missing descriptors, unresolved
// dependencies) never abort it; they accumulate on per-entry ledgers:
//
//	for _, entry := range cache.ErroredEntries() {
//	    fmt.Println(entry.CanonicalPath(), entry.Errors())
//	}
//
// [pkgcache]: https://pkg.go.dev/github.com/pkgscout/pkgscout/pkg/pkgcache
// [graphio]: https://pkg.go.dev/github.com/pkgscout/pkgscout/pkg/graphio
// [errors]: https://pkg.go.dev/github.com/pkgscout/pkgscout/pkg/errors
package pkg
