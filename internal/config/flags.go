package config

import (
	"flag"
	"fmt"
	"strconv"
	"time"
)

// Flags holds the command line overrides registered on a FlagSet.
type Flags struct {
	ConfigFile string
	EnvFile    string

	values map[string]*string
}

var overrideFlags = []struct {
	name  string
	usage string
}{
	{"api-url", "Backend base URL (rest driver)"},
	{"api-token", "Bearer token for the backend"},
	{"api-timeout", "Backend request timeout, e.g. 15s"},
	{"store", "Store driver: memory, sqlite or rest"},
	{"sqlite-path", "SQLite database path (sqlite driver)"},
	{"templates-dir", "Directory of template seed files"},
	{"log-level", "Log level: debug, info, warn, error"},
	{"log-dev", "Use the development logger (true/false)"},
	{"checkbox-required", "Enforce required on checkbox groups (true/false)"},
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{values: make(map[string]*string, len(overrideFlags))}
	fs.StringVar(&f.ConfigFile, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Path to a dotenv file")
	for _, def := range overrideFlags {
		f.values[def.name] = fs.String(def.name, "", def.usage)
	}
	return f
}

// Load reads the configuration sources named by the flags and applies the
// flags that were set explicitly on fs.
func (f *Flags) Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := Load(LoadOptions{
		File:           f.ConfigFile,
		EnvFile:        f.EnvFile,
		RequireEnvFile: isSet(fs, "env-file"),
	})
	if err != nil {
		return Config{}, err
	}
	if err := f.Apply(fs, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Apply copies explicitly set flags into cfg.
func (f *Flags) Apply(fs *flag.FlagSet, cfg *Config) error {
	var applyErr error
	fs.Visit(func(fl *flag.Flag) {
		if applyErr != nil {
			return
		}
		ptr, ok := f.values[fl.Name]
		if !ok {
			return
		}
		applyErr = applyFlag(cfg, fl.Name, *ptr)
	})
	return applyErr
}

func applyFlag(cfg *Config, name, value string) error {
	switch name {
	case "api-url":
		cfg.API.BaseURL = value
	case "api-token":
		cfg.API.Token = value
	case "api-timeout":
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: -%s: %w", name, err)
		}
		cfg.API.Timeout = timeout
	case "store":
		cfg.Store.Driver = value
	case "sqlite-path":
		cfg.Store.SQLitePath = value
	case "templates-dir":
		cfg.Templates.Dir = value
	case "log-level":
		cfg.Log.Level = value
	case "log-dev", "checkbox-required":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: -%s: %w", name, err)
		}
		if name == "log-dev" {
			cfg.Log.Development = parsed
		} else {
			cfg.Forms.EnforceCheckboxRequired = parsed
		}
	}
	return nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}
