// Package config loads the service settings from an optional YAML file and
// the environment. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hperssn/buildcalc/internal/logging"
	"github.com/hperssn/buildcalc/internal/storage"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Listen   string   `yaml:"listen"`
	Database Database `yaml:"database"`
	AdminIDs []string `yaml:"adminIds"`
	Log      Log      `yaml:"log"`
}

type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Listen:   ":8080",
		Database: Database{Driver: storage.DriverSQLite, DSN: "buildcalc.db"},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Load reads path when it is not empty, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set("BUILDCALC_LISTEN", &cfg.Listen)
	set("BUILDCALC_DB_DRIVER", &cfg.Database.Driver)
	set("BUILDCALC_DB_DSN", &cfg.Database.DSN)
	set("LOG_LEVEL", &cfg.Log.Level)
	set("LOG_FORMAT", &cfg.Log.Format)

	if v, ok := lookup("ADMIN_IDS"); ok {
		cfg.AdminIDs = splitIDs(v)
	}
}

// splitIDs parses a comma separated identity list, dropping blanks.
func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalid)
	}

	switch c.Database.Driver {
	case storage.DriverSQLiteCgo, storage.DriverSQLite, storage.DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database dsn is required for driver %q", ErrInvalid, c.Database.Driver)
		}
	case storage.DriverMemory:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalid, c.Database.Driver)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
