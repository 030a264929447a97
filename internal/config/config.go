// Package config loads levelup settings from YAML, .env and LEVELUP_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "levelup.yaml"

// Materialization modes.
const (
	ModeStrict  = "strict"
	ModeLenient = "lenient"
)

// Config is the root configuration.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Journeys    JourneysConfig    `yaml:"journeys"`
	Materialize MaterializeConfig `yaml:"materialize"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// JourneysConfig points at the journey documents. An empty Dir selects the
// documents embedded in the binary.
type JourneysConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

type MaterializeConfig struct {
	Mode        string `yaml:"mode"`
	Concurrency int    `yaml:"concurrency"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite3",
			Path:   defaultDBPath(),
		},
		Materialize: MaterializeConfig{
			Mode:        ModeStrict,
			Concurrency: 4,
		},
		Server: ServerConfig{
			Addr: ":3001",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".levelup", "levelup.db")
	}
	return filepath.Join(home, ".levelup", "levelup.db")
}

// Load builds the configuration from defaults, the YAML file at path, a .env
// file in the working directory and LEVELUP_* environment variables, in that
// order. An empty path falls back to DefaultFile when it exists.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}
	return cfg, nil
}

// Validate checks enumerated values and required fields.
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case "sqlite3", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite3 or sqlite, got %q", c.Database.Driver))
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	switch c.Materialize.Mode {
	case ModeStrict, ModeLenient:
	default:
		errs = append(errs, fmt.Sprintf("materialize.mode must be strict or lenient, got %q", c.Materialize.Mode))
	}
	if c.Materialize.Concurrency < 1 {
		errs = append(errs, "materialize.concurrency must be at least 1")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LEVELUP_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LEVELUP_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LEVELUP_JOURNEYS_DIR"); v != "" {
		cfg.Journeys.Dir = v
	}
	if v := os.Getenv("LEVELUP_JOURNEYS_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Journeys.Watch = b
		}
	}
	if v := os.Getenv("LEVELUP_MATERIALIZE_MODE"); v != "" {
		cfg.Materialize.Mode = v
	}
	if v := os.Getenv("LEVELUP_MATERIALIZE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Materialize.Concurrency = n
		}
	}
	if v := os.Getenv("LEVELUP_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LEVELUP_JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("LEVELUP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LEVELUP_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
