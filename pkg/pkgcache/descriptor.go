package pkgcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
)

// DescriptorFilename is the package descriptor file Node-style projects use.
const DescriptorFilename = "package.json"

// defaultEntryPoint is assumed when neither framework.main nor main is set.
const defaultEntryPoint = "index.js"

// FrameworkMeta is the optional "framework" object in a package descriptor.
// It marks the package as framework-aware and carries addon configuration.
type FrameworkMeta struct {
	// Main overrides the package entry point for addon and engine packages.
	Main string `json:"main"`
	// Paths lists directories, relative to the package, that hold in-repo
	// addon packages.
	Paths []string `json:"paths"`
}

// Descriptor is the parsed contents of a package.json. Only the fields the
// cache inspects are decoded; everything else is ignored.
type Descriptor struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Main            string            `json:"main"`
	Keywords        []string          `json:"keywords"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Framework       *FrameworkMeta    `json:"framework"`
}

// HasKeyword reports whether kw appears in the descriptor's keywords list.
func (d *Descriptor) HasKeyword(kw string) bool {
	return slices.Contains(d.Keywords, kw)
}

// EntryPoint returns the relative path of the package's entry-point file:
// framework.main when set, else main, else index.js.
func (d *Descriptor) EntryPoint() string {
	if d.Framework != nil && d.Framework.Main != "" {
		return d.Framework.Main
	}
	if d.Main != "" {
		return d.Main
	}
	return defaultEntryPoint
}

// parseDescriptor reads and decodes the package.json at path.
func parseDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// placeholderDescriptor synthesizes a descriptor for a package whose
// package.json is missing or unreadable, so references to the package
// remain usable. The directory basename stands in for the name.
func placeholderDescriptor(dir string) *Descriptor {
	return &Descriptor{Name: filepath.Base(dir)}
}
