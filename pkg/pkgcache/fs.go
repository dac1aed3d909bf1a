package pkgcache

import (
	"os"
	"path/filepath"
)

// pathState is the three-valued outcome of resolving a filesystem path.
type pathState int

const (
	// pathResolved: the path exists, is the expected kind, and was
	// resolved to its canonical symlink-free form.
	pathResolved pathState = iota
	// pathWrongKind: the path exists but is not the expected kind
	// (a file where a directory was expected, or vice versa).
	pathWrongKind
	// pathAbsent: the path does not exist, or resolution failed.
	pathAbsent
)

// realDirPath resolves dir to its canonical symlink-free absolute form.
// When resolution fails the normalized absolute path is returned instead,
// so callers always get a stable cache key for the directory they probed.
func realDirPath(dir string) (string, pathState) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir), pathAbsent
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, pathAbsent
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return abs, pathAbsent
	}
	if !info.IsDir() {
		return resolved, pathWrongKind
	}
	return resolved, pathResolved
}

// realFilePath is the file counterpart of realDirPath.
func realFilePath(path string) (string, pathState) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path), pathAbsent
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, pathAbsent
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return abs, pathAbsent
	}
	if info.IsDir() {
		return resolved, pathWrongKind
	}
	return resolved, pathResolved
}

// listChildren enumerates the immediate children of dir. A read failure
// after a successful existence check is a filesystem race; callers treat
// it the same as an absent directory.
func listChildren(dir string) ([]os.DirEntry, error) {
	return os.ReadDir(dir)
}
