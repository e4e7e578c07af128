// Package config resolves jobtrack settings from flags, environment
// variables, an optional YAML config file and built-in defaults, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Flags of the same name are bound to them.
const (
	KeyDB       = "db"
	KeyLogLevel = "log_level"
	KeyFormat   = "format"
)

// EnvPrefix prefixes every environment variable, e.g. JOBTRACK_DB.
const EnvPrefix = "JOBTRACK"

// Defaults.
const (
	DefaultDBPath   = "jobtrack.db"
	DefaultLogLevel = "warn"
	DefaultFormat   = "text"
)

// Config is the resolved configuration.
type Config struct {
	DBPath   string
	LogLevel string
	Format   string

	// File is the config file that was read, or "" when none was found.
	File string
}

// Load resolves the configuration. flags may be nil. When file is empty,
// jobtrack.yaml is searched for in the working directory and then in
// $HOME/.config/jobtrack; not finding one is not an error. An explicit file
// must exist.
func Load(flags *pflag.FlagSet, file string) (Config, error) {
	vp := viper.New()

	vp.SetDefault(KeyDB, DefaultDBPath)
	vp.SetDefault(KeyLogLevel, DefaultLogLevel)
	vp.SetDefault(KeyFormat, DefaultFormat)

	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeyDB, KeyLogLevel, KeyFormat} {
			flag := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := vp.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("binding flag %q: %w", flag.Name, err)
			}
		}
	}

	if file != "" {
		vp.SetConfigFile(file)
	} else {
		vp.SetConfigName("jobtrack")
		vp.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			vp.AddConfigPath(filepath.Join(home, ".config", "jobtrack"))
		}
	}

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		DBPath:   strings.TrimSpace(vp.GetString(KeyDB)),
		LogLevel: strings.ToLower(strings.TrimSpace(vp.GetString(KeyLogLevel))),
		Format:   strings.ToLower(strings.TrimSpace(vp.GetString(KeyFormat))),
		File:     vp.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting has a usable value.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("invalid config: %s must not be empty", KeyDB)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid config: %s %q must be text or json", KeyFormat, c.Format)
	}
	return nil
}
