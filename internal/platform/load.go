package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrPlatformSectionMissing indicates that [platform] is missing.
	ErrPlatformSectionMissing = errors.New("missing [platform]")
	// ErrPlatformNameMissing indicates that [platform].name is missing.
	ErrPlatformNameMissing = errors.New("missing [platform].name")
)

// LoadFile parses a platform TOML file. Keys that are absent keep their
// built-in defaults; [options] is optional.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return finish(path, cfg, meta)
}

// Parse is LoadFile over an in-memory document.
func Parse(name, doc string) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(doc, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	return finish(name, cfg, meta)
}

func finish(path string, cfg Config, meta toml.MetaData) (Config, error) {
	if !meta.IsDefined("platform") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPlatformSectionMissing)
	}
	if !meta.IsDefined("platform", "name") || strings.TrimSpace(cfg.Caps.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPlatformNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Options.Normalize()
	if err := cfg.Caps.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads path when it is set and exists, the defaults otherwise.
func Resolve(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("platform file: %w", err)
	}
	return LoadFile(path)
}
