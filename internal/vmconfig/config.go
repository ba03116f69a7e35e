// Package vmconfig loads the runtime's small set of configurable knobs
// (classpath roots, log level) from an optional TOML file, layered under
// built-in defaults and flag overrides.
package vmconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the resolved runtime configuration.
type Config struct {
	Classpath []string `toml:"classpath"`
	LogLevel  string   `toml:"log_level"`
}

// Default returns the built-in configuration used when no file is present:
// a single classpath root "api".
func Default() Config {
	return Config{
		Classpath: []string{"api"},
		LogLevel:  "info",
	}
}

// Load reads path and merges it over Default(). A missing file is not an
// error; it simply yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if len(cfg.Classpath) == 0 {
		cfg.Classpath = Default().Classpath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	return cfg, nil
}
