package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

// Config holds the application configuration.
type Config struct {
	// APIKey only pre-fills the setup screen. It is never written back.
	APIKey   string         `mapstructure:"api_key"`
	Provider ProviderConfig `mapstructure:"provider"`
	Game     GameConfig     `mapstructure:"game"`
	Log      LogConfig      `mapstructure:"log"`
}

// ProviderConfig selects how completions are requested.
type ProviderConfig struct {
	Transport string        `mapstructure:"transport"`
	Endpoint  string        `mapstructure:"endpoint"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type GameConfig struct {
	StatBudget    int  `mapstructure:"stat_budget"`
	EnforceBudget bool `mapstructure:"enforce_budget"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// LoadConfig reads config.yaml from CONFIG_PATH or the working directory,
// then applies ADVENTURE_* environment overrides. A missing file is fine.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("provider.transport", TransportREST)
	v.SetDefault("provider.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("provider.model", "gemini-2.5-flash")
	v.SetDefault("provider.timeout", time.Duration(0))
	v.SetDefault("game.stat_budget", 10)
	v.SetDefault("game.enforce_budget", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("api_key", "")

	v.SetEnvPrefix("adventure")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "ADVENTURE_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider.Transport {
	case TransportREST, TransportSDK:
	default:
		return fmt.Errorf("unknown provider.transport %q (want %q or %q)", c.Provider.Transport, TransportREST, TransportSDK)
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must not be negative")
	}
	if c.Game.StatBudget < 0 {
		return fmt.Errorf("game.stat_budget must not be negative")
	}
	return nil
}
