package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buildcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
listen: 127.0.0.1:9000
database:
  driver: postgres
  dsn: postgres://calc@localhost/calc?sslmode=disable
adminIds: [op1, op2]
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, Database{Driver: "postgres", DSN: "postgres://calc@localhost/calc?sslmode=disable"}, cfg.Database)
	assert.Equal(t, []string{"op1", "op2"}, cfg.AdminIDs)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, cfg.Log)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "listen: :9000\nadminIds: [op1]\n")
	t.Setenv("BUILDCALC_LISTEN", ":7000")
	t.Setenv("BUILDCALC_DB_DRIVER", "memory")
	t.Setenv("ADMIN_IDS", " 42, ,43 ")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, []string{"42", "43"}, cfg.AdminIDs)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyEnvIgnoresBlank(t *testing.T) {
	cfg := Default()
	env := map[string]string{"BUILDCALC_LISTEN": "  ", "LOG_LEVEL": "warn"}
	applyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Nil(t, cfg.AdminIDs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"memory without dsn", func(c *Config) { c.Database = Database{Driver: "memory"} }, true},
		{"cgo sqlite", func(c *Config) { c.Database.Driver = "sqlite3" }, true},
		{"empty listen", func(c *Config) { c.Listen = "" }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"postgres without dsn", func(c *Config) { c.Database = Database{Driver: "postgres"} }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "listen: [unclosed"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "database:\n  driver: oracle\n"))
	require.ErrorIs(t, err, ErrInvalid)
}
