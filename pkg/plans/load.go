package plans

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a catalog file.
type File struct {
	Version     string `yaml:"version" toml:"version"`
	DefaultPlan string `yaml:"default_plan" toml:"default_plan"`
	Plans       []Plan `yaml:"plans" toml:"plans"`
}

// Load reads a catalog from path. The format is chosen by extension:
// .toml is parsed as TOML, anything else as YAML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %q: %w", path, err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog file %q: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog file %q: %w", path, err)
		}
	}

	version := f.Version
	if version == "" {
		version = filepath.Base(path)
	}

	c, err := NewCatalog(version, f.DefaultPlan, f.Plans)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog file %q: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads the catalog at path, or returns the built-in catalog
// when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	return Load(path)
}
