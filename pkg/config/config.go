// Package config loads optional per-project settings for reqsmith.
//
// Settings come from three layers, later layers winning:
//  1. built-in defaults
//  2. a reqsmith.toml file at the project root
//  3. environment variables (REQSMITH_*), optionally fed from a .env
//     file at the project root
//
// The manifest itself (pyproject.toml) is never read here; it belongs to
// poetry.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/reqsmith/pkg/errors"
)

// FileName is the per-project configuration file.
const FileName = "reqsmith.toml"

// Conflict policy names accepted in configuration.
const (
	PolicyPrompt            = "prompt"
	PolicySkip              = "skip"
	PolicyPreferConstrained = "prefer-constrained"
)

// Config holds the user-tunable settings.
type Config struct {
	// SkipDirs are directory names excluded from scanning, in addition
	// to the built-in skip list.
	SkipDirs []string `toml:"skip_dirs"`

	// Renames maps import names to distribution names, extending the
	// built-in rename table.
	Renames map[string]string `toml:"renames"`

	// Ignore lists package names that are never registered, regardless
	// of where they were discovered.
	Ignore []string `toml:"ignore"`

	// ConflictPolicy picks the default conflict resolution:
	// prompt, skip, or prefer-constrained.
	ConflictPolicy string `toml:"conflict_policy"`

	// PoetryBin overrides the poetry executable.
	PoetryBin string `toml:"poetry_bin"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ConflictPolicy: PolicyPrompt,
		PoetryBin:      "poetry",
	}
}

// Load reads the configuration for the project at dir, applying file and
// environment layers over the defaults. A missing reqsmith.toml or .env
// is not an error; a malformed one is.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	// .env feeds the process environment; real environment variables
	// already set keep their value (godotenv does not override).
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	if v := os.Getenv("REQSMITH_POETRY_BIN"); v != "" {
		cfg.PoetryBin = v
	}
	if v := os.Getenv("REQSMITH_CONFLICT_POLICY"); v != "" {
		cfg.ConflictPolicy = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ConflictPolicy {
	case PolicyPrompt, PolicySkip, PolicyPreferConstrained:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown conflict_policy %q (expected %s, %s or %s)",
			c.ConflictPolicy, PolicyPrompt, PolicySkip, PolicyPreferConstrained)
	}
	if c.PoetryBin == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "poetry_bin must not be empty")
	}
	return nil
}

// Ignored returns the ignore list as a normalized lookup set.
func (c *Config) Ignored(normalize func(string) string) map[string]bool {
	out := make(map[string]bool, len(c.Ignore))
	for _, name := range c.Ignore {
		out[normalize(name)] = true
	}
	return out
}
