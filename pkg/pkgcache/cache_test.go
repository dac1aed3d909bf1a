package pkgcache

import (
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/pkgscout/pkgscout/pkg/errors"
)

// writePackage creates dir with the given package.json contents.
func writePackage(t *testing.T, dir, descriptor string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DescriptorFilename), []byte(descriptor), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustLoad(t *testing.T, c *Cache, dir string, isRoot bool) *PackageNode {
	t.Helper()
	node, err := c.LoadPackage(dir, isRoot)
	if err != nil {
		t.Fatalf("LoadPackage(%s): %v", dir, err)
	}
	return node
}

func TestLoadPackageIdempotent(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "version": "1.0.0"}`)

	c := New(Options{})
	first := mustLoad(t, c, root, true)
	second := mustLoad(t, c, root, true)

	if first != second {
		t.Error("double load should return the identical node object")
	}

	entry, ok := c.Lookup(first.CanonicalPath())
	if !ok {
		t.Fatal("canonical path missing from table after load")
	}
	if entry.(*PackageNode) != first {
		t.Error("Lookup should return the node reached via traversal")
	}

	// Exactly one node for the path.
	count := 0
	for _, e := range c.Entries() {
		if e.CanonicalPath() == first.CanonicalPath() {
			count++
		}
	}
	if count != 1 {
		t.Errorf("table holds %d entries for root path, want 1", count)
	}
}

func TestDependencyResolution(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "dependencies": {"left": "^1.0.0", "gone": "*"}}`)
	writePackage(t, filepath.Join(root, "node_modules", "left"), `{"name": "left", "version": "1.2.3"}`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	if !node.Processed() {
		t.Error("root should be processed after load")
	}
	left, ok := node.Dependencies["left"]
	if !ok {
		t.Fatal("left not resolved")
	}
	wantPath, _ := realDirPath(filepath.Join(root, "node_modules", "left"))
	if left.CanonicalPath() != wantPath {
		t.Errorf("left resolved to %s, want %s", left.CanonicalPath(), wantPath)
	}
	if _, ok := node.Dependencies["gone"]; ok {
		t.Error("gone should not be resolved")
	}

	// Resolved names plus the single unresolved payload must equal the
	// declared set.
	diags := node.Errors()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if diags[0].Kind != ErrDependenciesUnresolved {
		t.Errorf("kind = %s, want %s", diags[0].Kind, ErrDependenciesUnresolved)
	}
	missing, ok := diags[0].Payload.([]string)
	if !ok || len(missing) != 1 || missing[0] != "gone" {
		t.Errorf("payload = %v, want [gone]", diags[0].Payload)
	}
	if !node.Valid {
		t.Error("unresolved dependencies must not invalidate the node")
	}
}

func TestDevDependenciesRootOnly(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "devDependencies": {"devtool": "*"}}`)
	writePackage(t, filepath.Join(root, "node_modules", "devtool"), `{"name": "devtool"}`)
	writePackage(t, filepath.Join(root, "node_modules", "bystander"),
		`{"name": "bystander", "devDependencies": {"unseen": "*"}}`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	if _, ok := node.DevDependencies["devtool"]; !ok {
		t.Error("root devDependency should resolve")
	}

	bystander := node.NodeModules.FindPackage("bystander")
	if bystander == nil {
		t.Fatal("bystander not loaded")
	}
	if len(bystander.DevDependencies) != 0 {
		t.Error("non-root devDependencies must not produce edges")
	}
	for _, d := range bystander.Errors() {
		if d.Kind == ErrDevDependenciesUnresolved {
			t.Error("non-root devDependencies must not produce diagnostics")
		}
	}
}

func TestMissingDescriptor(t *testing.T) {
	root := t.TempDir()

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	if node == nil {
		t.Fatal("missing descriptor must still yield a node")
	}
	if node.Valid {
		t.Error("node should be invalid")
	}
	diags := node.Errors()
	if len(diags) != 1 || diags[0].Kind != ErrDescriptorMissing {
		t.Errorf("diagnostics = %v, want exactly one descriptor-missing", diags)
	}
	if want := filepath.Base(node.CanonicalPath()); node.Name() != want {
		t.Errorf("placeholder name = %q, want %q", node.Name(), want)
	}
}

func TestUnparseableDescriptor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, DescriptorFilename), `{"name": "broken",`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	if node.Valid {
		t.Error("node should be invalid")
	}
	diags := node.Errors()
	if len(diags) != 1 || diags[0].Kind != ErrDescriptorUnparseable {
		t.Errorf("diagnostics = %v, want exactly one descriptor-unparseable", diags)
	}
}

func TestDirectoryMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	c := New(Options{})
	node := mustLoad(t, c, missing, true)

	if node.Valid {
		t.Error("node should be invalid")
	}
	diags := node.Errors()
	if len(diags) != 1 || diags[0].Kind != ErrDirectoryMissing {
		t.Errorf("diagnostics = %v, want exactly one directory-missing", diags)
	}
	if !c.Contains(node.CanonicalPath()) {
		t.Error("probed-but-absent directory should still get a stable table entry")
	}
	if node.NodeModules != NullListing {
		t.Error("missing directory should get the null listing")
	}
}

func TestScopedDependencyResolution(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "dependencies": {
		"@scope/pkg": "*", "@scope/missing": "*", "@missing/pkg": "*"}}`)
	writePackage(t, filepath.Join(root, "node_modules", "@scope", "pkg"), `{"name": "@scope/pkg"}`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	if _, ok := node.Dependencies["@scope/pkg"]; !ok {
		t.Error("@scope/pkg should resolve")
	}
	diags := node.Errors()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	missing := diags[0].Payload.([]string)
	want := []string{"@missing/pkg", "@scope/missing"}
	if len(missing) != 2 || missing[0] != want[0] || missing[1] != want[1] {
		t.Errorf("missing = %v, want %v", missing, want)
	}
}

func TestFindPackageUpwardSearch(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app"}`)
	writePackage(t, filepath.Join(root, "node_modules", "up"), `{"name": "up"}`)
	nested := filepath.Join(root, "packages", "deep", "deeper")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	c := New(Options{})
	pkg, err := c.FindPackage("up", nested)
	if err != nil {
		t.Fatal(err)
	}
	if pkg == nil || pkg.Name() != "up" {
		t.Fatalf("FindPackage(up) = %v, want package up", pkg)
	}

	none, err := c.FindPackage("exists-nowhere", nested)
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Errorf("FindPackage(exists-nowhere) = %v, want nil", none)
	}
}

func TestFindPackageRelativeStart(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app"}`)
	writePackage(t, filepath.Join(root, "node_modules", "left-pad"), `{"name": "left-pad"}`)
	sub := filepath.Join(root, "app", "src")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)

	c := New(Options{})
	pkg, err := c.FindPackage("left-pad", ".")
	if err != nil {
		t.Fatal(err)
	}
	if pkg == nil || pkg.Name() != "left-pad" {
		t.Fatalf("a relative start must climb the full ancestor chain, got %v", pkg)
	}
}

func TestFindPackageFromNodeModulesDir(t *testing.T) {
	root := t.TempDir()
	nm := filepath.Join(root, "node_modules")
	writePackage(t, filepath.Join(nm, "direct"), `{"name": "direct"}`)

	c := New(Options{})
	pkg, err := c.FindPackage("direct", nm)
	if err != nil {
		t.Fatal(err)
	}
	if pkg == nil || pkg.Name() != "direct" {
		t.Fatalf("a start path named node_modules should be searched directly, got %v", pkg)
	}
}

func TestListingSkipsIrrelevantChildren(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app"}`)
	nm := filepath.Join(root, "node_modules")
	writePackage(t, filepath.Join(nm, ".hidden"), `{"name": "hidden"}`)
	writePackage(t, filepath.Join(nm, "_staging"), `{"name": "staging"}`)
	writeFile(t, filepath.Join(nm, "README.md"), "not a package")
	if err := os.MkdirAll(filepath.Join(nm, "no-descriptor"), 0o755); err != nil {
		t.Fatal(err)
	}
	writePackage(t, filepath.Join(nm, "real"), `{"name": "real"}`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	if node.NodeModules.Len() != 1 {
		t.Errorf("listing has %d entries, want 1", node.NodeModules.Len())
	}
	if node.NodeModules.FindPackage("real") == nil {
		t.Error("real should be listed")
	}
	for _, name := range []string{".hidden", "_staging", "README.md", "no-descriptor"} {
		if _, ok := node.NodeModules.Entry(name); ok {
			t.Errorf("%s should be skipped", name)
		}
	}
}

func TestWrongEntryKindIsFatal(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "node_modules")
	writePackage(t, dir, `{"name": "disguised"}`)

	c := New(Options{})
	mustLoad(t, c, dir, false)

	// The same path now probed as a node_modules listing is a contract
	// violation, not a recoverable diagnostic.
	_, err := c.FindPackage("anything", dir)
	if err == nil {
		t.Fatal("expected fatal invariant error")
	}
	if !pkgerrors.Is(err, pkgerrors.ErrCodeInternal) {
		t.Errorf("error code = %s, want INTERNAL_ERROR", pkgerrors.GetCode(err))
	}
}

func TestInRepoAddons(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "framework": {"paths": ["lib/alpha", "lib/beta"]}}`)
	writePackage(t, filepath.Join(root, "lib", "alpha"),
		`{"name": "alpha", "keywords": ["framework-addon"]}`)
	writeFile(t, filepath.Join(root, "lib", "alpha", "index.js"), "module.exports = {}")
	writePackage(t, filepath.Join(root, "lib", "beta"),
		`{"name": "beta", "keywords": ["framework-addon"], "main": "entry.js"}`)
	writeFile(t, filepath.Join(root, "lib", "beta", "entry.js"), "module.exports = {}")

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	if node.Role != RoleApp {
		t.Errorf("root role = %s, want app", node.Role)
	}
	if len(node.InRepoAddons) != 2 {
		t.Fatalf("got %d in-repo addons, want 2", len(node.InRepoAddons))
	}
	rootPath := node.CanonicalPath()
	for _, addon := range node.InRepoAddons {
		if !addon.Valid {
			t.Errorf("addon %s should be valid: %v", addon.Name(), addon.Errors())
		}
		if rel, err := filepath.Rel(rootPath, addon.CanonicalPath()); err != nil || rel == ".." || filepath.IsAbs(rel) {
			t.Errorf("addon %s not nested under root: %s", addon.Name(), addon.CanonicalPath())
		}
	}
	if node.InRepoAddons[0].Name() != "alpha" || node.InRepoAddons[1].Name() != "beta" {
		t.Errorf("addons not sorted by name: %s, %s",
			node.InRepoAddons[0].Name(), node.InRepoAddons[1].Name())
	}
}

func TestAddonEntryPointMissing(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "framework": {"paths": ["lib/ghost"]}}`)
	writePackage(t, filepath.Join(root, "lib", "ghost"),
		`{"name": "ghost", "keywords": ["framework-addon"]}`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	ghost := node.InRepoAddons[0]
	if ghost.Valid {
		t.Error("addon without entry point should be invalid")
	}
	diags := ghost.Errors()
	if len(diags) != 1 || diags[0].Kind != ErrEntryPointMissing {
		t.Errorf("diagnostics = %v, want exactly one entry-point-missing", diags)
	}
}

func TestSymlinkedPackagesShareOneNode(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "dependencies": {"alias": "*"}}`)
	real := filepath.Join(root, "vendor", "real-pkg")
	writePackage(t, real, `{"name": "real-pkg"}`)
	nm := filepath.Join(root, "node_modules")
	if err := os.MkdirAll(nm, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(real, filepath.Join(nm, "alias")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	viaListing := node.NodeModules.FindPackage("alias")
	if viaListing == nil {
		t.Fatal("alias not loaded")
	}
	direct := mustLoad(t, c, real, false)
	if viaListing != direct {
		t.Error("symlink and real path should collapse to one node")
	}
}

func TestPlainPackageGetsNullListing(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app"}`)
	plain := filepath.Join(root, "node_modules", "plain")
	writePackage(t, plain, `{"name": "plain"}`)
	nested := filepath.Join(plain, "node_modules", "hidden-dep")
	writePackage(t, nested, `{"name": "hidden-dep"}`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	p := node.NodeModules.FindPackage("plain")
	if p == nil {
		t.Fatal("plain not loaded")
	}
	if p.Role != RolePlain {
		t.Errorf("role = %s, want plain", p.Role)
	}
	if p.NodeModules != NullListing {
		t.Error("plain package should get the shared null listing")
	}
	nestedReal, _ := realDirPath(nested)
	if c.Contains(nestedReal) {
		t.Error("nested tree of a plain package should not be traversed")
	}
}

func TestOwnListingPreferredOverUpwardSearch(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app"}`)
	writePackage(t, filepath.Join(root, "node_modules", "shared"), `{"name": "shared", "version": "1.0.0"}`)
	addon := filepath.Join(root, "node_modules", "holder")
	writePackage(t, addon, `{"name": "holder", "keywords": ["framework-addon"], "dependencies": {"shared": "*"}}`)
	writeFile(t, filepath.Join(addon, "index.js"), "")
	writePackage(t, filepath.Join(addon, "node_modules", "shared"), `{"name": "shared", "version": "2.0.0"}`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	holder := node.NodeModules.FindPackage("holder")
	if holder == nil {
		t.Fatal("holder not loaded")
	}
	shared := holder.Dependencies["shared"]
	if shared == nil {
		t.Fatal("shared not resolved")
	}
	if shared.Descriptor.Version != "2.0.0" {
		t.Errorf("resolved version %s; the own listing must win over the upward search", shared.Descriptor.Version)
	}
}

func TestResolutionRunsOncePerNode(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "dependencies": {"gone": "*"}}`)

	c := New(Options{})
	mustLoad(t, c, root, true)
	node := mustLoad(t, c, root, true)

	count := 0
	for _, d := range node.Errors() {
		if d.Kind == ErrDependenciesUnresolved {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d unresolved diagnostics after double load, want 1", count)
	}
}

func TestCyclicDependenciesShareNodes(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "dependencies": {"a": "*"}}`)
	writePackage(t, filepath.Join(root, "node_modules", "a"), `{"name": "a", "dependencies": {"b": "*"}}`)
	writePackage(t, filepath.Join(root, "node_modules", "b"), `{"name": "b", "dependencies": {"a": "*"}}`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	a := node.Dependencies["a"]
	if a == nil {
		t.Fatal("a not resolved")
	}
	b := a.Dependencies["b"]
	if b == nil {
		t.Fatal("b not resolved")
	}
	if b.Dependencies["a"] != a {
		t.Error("mutual dependency must resolve to the identical node")
	}
}

func TestErroredEntriesTableOrder(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, `{"name": "app", "dependencies": {"gone": "*"}}`)
	writeFile(t, filepath.Join(root, "node_modules", "broken", DescriptorFilename), `not json`)

	c := New(Options{})
	node := mustLoad(t, c, root, true)

	if !c.HasErrors() {
		t.Fatal("expected errors")
	}
	errored := c.ErroredEntries()
	if len(errored) != 2 {
		t.Fatalf("got %d errored entries, want 2", len(errored))
	}
	// The root registered first, so it comes first in table order.
	if errored[0].CanonicalPath() != node.CanonicalPath() {
		t.Errorf("first errored entry = %s, want root", errored[0].CanonicalPath())
	}
}
