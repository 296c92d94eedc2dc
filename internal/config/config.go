package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Sim      SimConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// SimConfig holds simulation limits.
type SimConfig struct {
	MaxSteps   int `mapstructure:"max_steps"`
	CycleLimit int `mapstructure:"cycle_limit"`
	MaxLength  int `mapstructure:"max_length"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme string
}

// Load reads configuration from file and env. Env var overrides use prefix ZFLAP_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "zflap", "zflap.db"))
	v.SetDefault("sim.max_steps", 100000)
	v.SetDefault("sim.cycle_limit", 2)
	v.SetDefault("sim.max_length", 8)
	v.SetDefault("ui.theme", "dark")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ZFLAP_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "zflap"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ZFLAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. This is primarily used by the TUI settings view.
func Save(cfg Config) error {
	path := os.Getenv("ZFLAP_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "zflap", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("sim.max_steps", cfg.Sim.MaxSteps)
	v.Set("sim.cycle_limit", cfg.Sim.CycleLimit)
	v.Set("sim.max_length", cfg.Sim.MaxLength)
	v.Set("ui.theme", cfg.UI.Theme)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
