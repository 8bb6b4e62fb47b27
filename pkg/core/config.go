// pkg/core/config.go
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when no --config is given
const DefaultConfigFile = "rsys.yaml"

// Config holds rsys configuration
type Config struct {
	Runtime     string `yaml:"runtime" mapstructure:"runtime"`
	Generator   string `yaml:"generator,omitempty" mapstructure:"generator"`
	Header      string `yaml:"header" mapstructure:"header"`
	Package     string `yaml:"package,omitempty" mapstructure:"package"`
	GodefsInput string `yaml:"godefs_input,omitempty" mapstructure:"godefs_input"`
	Tool        string `yaml:"tool,omitempty" mapstructure:"tool"`
	OutDir      string `yaml:"out_dir,omitempty" mapstructure:"out_dir"`
	BindingsDir string `yaml:"bindings_dir,omitempty" mapstructure:"bindings_dir"`
	Target      string `yaml:"target,omitempty" mapstructure:"target"`
	CachePath   string `yaml:"cache_path,omitempty" mapstructure:"cache_path"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
	Force       bool   `yaml:"-" mapstructure:"force"`

	// File is the config file the values were read from, if any
	File string `yaml:"-" mapstructure:"-"`
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"runtime":      "RSYS_RUNTIME",
	"generator":    "RSYS_GENERATOR",
	"out_dir":      "OUT_DIR",
	"bindings_dir": "RSYS_BINDINGS_DIR",
	"target":       "TARGET",
	"cache_path":   "RSYS_CACHE_PATH",
	"debug":        "RSYS_DEBUG",
}

// EnvVar returns the environment variable bound to a config key
func EnvVar(key string) string {
	return envBindings[key]
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Runtime:   "r",
		Header:    "wrapper.h",
		CachePath: getDefaultCachePath(),
	}
}

// LoadConfig loads configuration from file, environment and flags, in
// increasing order of precedence. An empty path falls back to ./rsys.yaml
// when it exists.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("runtime", def.Runtime)
	v.SetDefault("header", def.Header)
	v.SetDefault("cache_path", def.CachePath)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !isConfigKey(key) || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("binding flags: %w", bindErr)
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		cfg.File = abs
	}

	return &cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func isConfigKey(key string) bool {
	switch key {
	case "runtime", "generator", "header", "package", "godefs_input", "tool",
		"out_dir", "bindings_dir", "target", "cache_path", "debug", "force":
		return true
	}
	return false
}

func getDefaultCachePath() string {
	if path := os.Getenv("RSYS_CACHE_PATH"); path != "" {
		return path
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "rsys")
	}

	return filepath.Join(dir, "rsys")
}
