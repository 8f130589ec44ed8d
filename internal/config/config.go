// Package config loads the command line configuration. Sources are applied
// in increasing precedence: defaults, YAML file, .env file, process
// environment (EMSFORMS_*), then explicitly set flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment key.
const EnvPrefix = "EMSFORMS_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverREST   = "rest"
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	Store     StoreConfig     `yaml:"store"`
	Templates TemplatesConfig `yaml:"templates"`
	Log       LogConfig       `yaml:"log"`
	Forms     FormsConfig     `yaml:"forms"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

type TemplatesConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type FormsConfig struct {
	EnforceCheckboxRequired bool `yaml:"enforce_checkbox_required"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API:   APIConfig{Timeout: 15 * time.Second},
		Store: StoreConfig{Driver: DriverMemory, SQLitePath: "emsforms.db"},
		Log:   LogConfig{Level: "info"},
	}
}

// LoadOptions selects the sources read by Load.
type LoadOptions struct {
	// File is an optional YAML file. A missing file is an error.
	File string
	// EnvFile is a dotenv file. A missing file is ignored unless
	// RequireEnvFile is set.
	EnvFile        string
	RequireEnvFile bool
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, File, EnvFile and the environment.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.File != "" {
		raw, err := os.ReadFile(opts.File)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", opts.File, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", opts.File, err)
		}
	}

	env := map[string]string{}
	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			env = values
		case errors.Is(err, fs.ErrNotExist) && !opts.RequireEnvFile:
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", opts.EnvFile, err)
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		if value, ok := lookup(EnvPrefix + key); ok {
			return value, true
		}
		value, ok := env[EnvPrefix+key]
		return value, ok
	}
	if err := cfg.applyEnv(get); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(get func(string) (string, bool)) error {
	setString := func(key string, target *string) {
		if value, ok := get(key); ok {
			*target = strings.TrimSpace(value)
		}
	}
	setBool := func(key string, target *bool) error {
		value, ok := get(key)
		if !ok {
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*target = parsed
		return nil
	}

	setString("API_BASE_URL", &c.API.BaseURL)
	setString("API_TOKEN", &c.API.Token)
	if value, ok := get("API_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %sAPI_TIMEOUT: %w", EnvPrefix, err)
		}
		c.API.Timeout = timeout
	}
	setString("STORE_DRIVER", &c.Store.Driver)
	setString("STORE_SQLITE_PATH", &c.Store.SQLitePath)
	setString("TEMPLATES_DIR", &c.Templates.Dir)
	setString("LOG_LEVEL", &c.Log.Level)
	if err := setBool("LOG_DEVELOPMENT", &c.Log.Development); err != nil {
		return err
	}
	return setBool("FORMS_ENFORCE_CHECKBOX_REQUIRED", &c.Forms.EnforceCheckboxRequired)
}

// Validate checks that the selected store driver is usable.
func (c Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("config: store.sqlite_path is required for the sqlite driver")
		}
	case DriverREST:
		if strings.TrimSpace(c.API.BaseURL) == "" {
			return errors.New("config: api.base_url is required for the rest driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.API.Timeout < 0 {
		return errors.New("config: api.timeout must not be negative")
	}
	return nil
}
