// Package config loads elementq settings from a YAML file.
//
// The file is found by Find, in order: an explicit path (the --config flag),
// $ELEMENTQ_CONFIG, ./elementq.yaml and ~/.config/elementq/config.yaml.
// Missing settings take the values from Default.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding a config file path.
const EnvVar = "ELEMENTQ_CONFIG"

// Config is the full set of settings.
type Config struct {
	Database Database `yaml:"database"`
	Output   Output   `yaml:"output"`
	Log      Log      `yaml:"log"`

	// Queries is a saved query file (YAML or CUE) used by `query --saved`.
	// Relative paths resolve against the config file's directory.
	Queries string `yaml:"queries"`
}

// Database selects the SQLite file and driver.
type Database struct {
	Path   string `yaml:"path" validate:"required"`
	Driver string `yaml:"driver" validate:"oneof=sqlite3 sqlite"`
}

// Output controls CLI output.
type Output struct {
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Log controls the slog handler installed by the CLI.
type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the settings used when no file sets them.
func Default() Config {
	return Config{
		Database: Database{Path: "elementq.db", Driver: "sqlite3"},
		Output:   Output{Format: "text"},
		Log:      Log{Level: "info"},
	}
}

// LogLevel returns the configured slog level.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every setting against its allowed values.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
		if fe.Tag() == "oneof" {
			msgs[i] = fmt.Sprintf("%s: %q is not one of [%s]", field, fe.Value(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s is %s", field, fe.Tag())
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Find returns the config file to load, or "" when there is none.
// An explicit or $ELEMENTQ_CONFIG path must exist; the default locations
// are skipped when absent.
func Find(explicit string) (string, error) {
	for _, p := range []string{explicit, os.Getenv(EnvVar)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return p, nil
	}

	candidates := []string{"elementq.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "elementq", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err = Parse(f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Queries != "" && !filepath.IsAbs(cfg.Queries) {
		cfg.Queries = filepath.Join(filepath.Dir(path), cfg.Queries)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	return cfg, cfg.Validate()
}
