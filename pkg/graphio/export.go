// Package graphio serializes a populated package graph for inspection:
// JSON for machine consumption and Graphviz DOT/SVG for visualization.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/google/uuid"

	"github.com/pkgscout/pkgscout/pkg/pkgcache"
)

// Edge relationship labels.
const (
	RelDependency    = "dependency"
	RelDevDependency = "devDependency"
	RelInRepoAddon   = "inRepoAddon"
	RelListingEntry  = "listingEntry"
)

// Node kinds in the serialized graph.
const (
	KindPackage = "package"
	KindListing = "node_modules"
)

// Graph is the serialization format for a scanned package graph. Nodes
// are identified by canonical path and appear in cache table order, so
// repeated exports of the same tree are stable.
type Graph struct {
	ScanID string `json:"scan_id"`
	Root   string `json:"root"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// Node is one cache entry: a package directory or a node_modules listing.
type Node struct {
	ID      string   `json:"id"` // canonical path
	Kind    string   `json:"kind"`
	Name    string   `json:"name,omitempty"`
	Version string   `json:"version,omitempty"`
	Role    string   `json:"role,omitempty"`
	Valid   bool     `json:"valid"`
	Errors  []string `json:"errors,omitempty"` // diagnostic kinds, in ledger order
}

// Edge is a directed relationship between two cache entries.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rel  string `json:"rel"`
}

// FromCache flattens a loaded cache into its serialization format. Every
// export gets a fresh scan identifier.
func FromCache(c *pkgcache.Cache, root *pkgcache.PackageNode) Graph {
	out := Graph{
		ScanID: uuid.NewString(),
		Root:   root.CanonicalPath(),
	}

	for _, entry := range c.Entries() {
		switch e := entry.(type) {
		case *pkgcache.PackageNode:
			out.Nodes = append(out.Nodes, packageNode(e))
			out.Edges = append(out.Edges, packageEdges(e)...)
		case *pkgcache.Listing:
			out.Nodes = append(out.Nodes, listingNode(e))
		}
	}
	return out
}

func packageNode(p *pkgcache.PackageNode) Node {
	return Node{
		ID:      p.CanonicalPath(),
		Kind:    KindPackage,
		Name:    p.Name(),
		Version: p.Descriptor.Version,
		Role:    p.Role.String(),
		Valid:   p.Valid,
		Errors:  errorKinds(p.Errors()),
	}
}

func listingNode(l *pkgcache.Listing) Node {
	return Node{
		ID:     l.CanonicalPath(),
		Kind:   KindListing,
		Valid:  !l.HasErrors(),
		Errors: errorKinds(l.Errors()),
	}
}

func packageEdges(p *pkgcache.PackageNode) []Edge {
	var edges []Edge
	for _, dep := range sortedValues(p.Dependencies) {
		edges = append(edges, Edge{From: p.CanonicalPath(), To: dep.CanonicalPath(), Rel: RelDependency})
	}
	for _, dep := range sortedValues(p.DevDependencies) {
		edges = append(edges, Edge{From: p.CanonicalPath(), To: dep.CanonicalPath(), Rel: RelDevDependency})
	}
	for _, addon := range p.InRepoAddons {
		edges = append(edges, Edge{From: p.CanonicalPath(), To: addon.CanonicalPath(), Rel: RelInRepoAddon})
	}
	return edges
}

// sortedValues returns map values ordered by their declared names, so
// edge order does not depend on map iteration.
func sortedValues(m map[string]*pkgcache.PackageNode) []*pkgcache.PackageNode {
	out := make([]*pkgcache.PackageNode, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[name])
	}
	return out
}

func errorKinds(diags []pkgcache.Diagnostic) []string {
	if len(diags) == 0 {
		return nil
	}
	kinds := make([]string, len(diags))
	for i, d := range diags {
		kinds[i] = string(d.Kind)
	}
	return kinds
}

// WriteJSON encodes the graph as indented JSON and writes it to w.
func WriteJSON(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
