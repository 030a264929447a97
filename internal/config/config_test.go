package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, ModeStrict, cfg.Materialize.Mode)
	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.True(t, strings.HasSuffix(cfg.Database.Path, filepath.Join(".levelup", "levelup.db")))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Chdir(t.TempDir())
	p := writeFile(t, ".", "custom.yaml", `
database:
  driver: sqlite
  path: /tmp/levelup-test.db
journeys:
  dir: ./journeys
  watch: true
materialize:
  mode: lenient
log:
  level: debug
  format: console
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/levelup-test.db", cfg.Database.Path)
	assert.Equal(t, "./journeys", cfg.Journeys.Dir)
	assert.True(t, cfg.Journeys.Watch)
	assert.Equal(t, ModeLenient, cfg.Materialize.Mode)
	assert.Equal(t, 4, cfg.Materialize.Concurrency, "unset keys keep defaults")
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_DefaultFileOptional(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, cfg.Materialize.Mode)
}

func TestLoad_DefaultFilePickedUp(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, ".", DefaultFile, "server:\n  addr: \":9000\"\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("nope.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEVELUP_MATERIALIZE_MODE", "lenient")
	t.Setenv("LEVELUP_MATERIALIZE_CONCURRENCY", "8")
	t.Setenv("LEVELUP_JOURNEYS_WATCH", "true")
	t.Setenv("LEVELUP_JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeLenient, cfg.Materialize.Mode)
	assert.Equal(t, 8, cfg.Materialize.Concurrency)
	assert.True(t, cfg.Journeys.Watch)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
}

func TestLoad_DotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, ".", ".env", "LEVELUP_SERVER_ADDR=:7777\n")
	t.Setenv("LEVELUP_SERVER_ADDR", "")
	os.Unsetenv("LEVELUP_SERVER_ADDR")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"empty path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"unknown mode", func(c *Config) { c.Materialize.Mode = "eventual" }, "materialize.mode"},
		{"zero concurrency", func(c *Config) { c.Materialize.Concurrency = 0 }, "materialize.concurrency"},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
