package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/pkgscout/pkgscout/pkg/errors"
)

// configFilename is looked up in the working directory before a command
// runs. All settings are optional; flags override the file.
const configFilename = ".pkgscout.toml"

// Config holds the optional per-project settings.
type Config struct {
	Scan   ScanConfig   `toml:"scan"`
	Render RenderConfig `toml:"render"`
}

// ScanConfig configures the scan command.
type ScanConfig struct {
	// Root is the default project directory when none is given.
	Root string `toml:"root"`
	// Strict makes scan exit non-zero when any diagnostics were recorded.
	Strict bool `toml:"strict"`
}

// RenderConfig configures the render command.
type RenderConfig struct {
	// Format is "svg" or "dot".
	Format string `toml:"format"`
	// Detailed includes version, role, and validity in node labels.
	Detailed bool `toml:"detailed"`
	// Listings includes node_modules listing nodes in the output.
	Listings bool `toml:"listings"`
}

func defaultConfig() Config {
	return Config{
		Scan:   ScanConfig{Root: "."},
		Render: RenderConfig{Format: "svg"},
	}
}

// loadConfig reads .pkgscout.toml from dir, returning defaults when the
// file is absent.
func loadConfig(dir string) (Config, error) {
	cfg := defaultConfig()
	path := filepath.Join(dir, configFilename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if cfg.Scan.Root == "" {
		cfg.Scan.Root = "."
	}
	if cfg.Render.Format == "" {
		cfg.Render.Format = "svg"
	}
	return cfg, nil
}
