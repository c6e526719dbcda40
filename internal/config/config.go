package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/timmy/reviewdash/internal/domain"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Poll      PollConfig      `mapstructure:"poll"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Actions   ActionsConfig   `mapstructure:"actions"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// GeneratorConfig points at the external generation service.
// A zero Timeout leaves the transport default in place.
type GeneratorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PollConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	DiscardStale bool          `mapstructure:"discard_stale"`
}

type DefaultsConfig struct {
	TotalReviews int `mapstructure:"total_reviews"`
	ChunkSize    int `mapstructure:"chunk_size"`
}

type ActionsConfig struct {
	TestBatchSize int `mapstructure:"test_batch_size"`
}

// Settings returns the generation settings a fresh dashboard starts with.
func (d DefaultsConfig) Settings() domain.GenerationSettings {
	return domain.GenerationSettings{
		TotalReviews: d.TotalReviews,
		ChunkSize:    d.ChunkSize,
	}
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"base-url":      "generator.base_url",
	"timeout":       "generator.timeout",
	"interval":      "poll.interval",
	"discard-stale": "poll.discard_stale",
	"port":          "server.port",
}

func Load(configPath string) (*Config, error) {
	return LoadWithFlags(configPath, nil)
}

// LoadWithFlags loads configuration like Load and lets any flag in flagKeys that was
// set on the command line override the file and environment.
func LoadWithFlags(configPath string, flags *pflag.FlagSet) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8090)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("generator.base_url", "http://localhost:8001")
	v.SetDefault("generator.timeout", time.Duration(0))
	v.SetDefault("poll.interval", 2*time.Second)
	v.SetDefault("poll.discard_stale", false)
	v.SetDefault("defaults.total_reviews", domain.DefaultTotalReviews)
	v.SetDefault("defaults.chunk_size", domain.DefaultChunkSize)
	v.SetDefault("actions.test_batch_size", domain.DefaultTestBatchSize)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("generator.base_url", "GENERATOR_BASE_URL", "BACKEND_URL")
	v.BindEnv("generator.timeout", "GENERATOR_TIMEOUT")
	v.BindEnv("poll.interval", "POLL_INTERVAL")
	v.BindEnv("server.port", "PORT")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Generator.BaseURL = strings.TrimRight(cfg.Generator.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the console cannot run with.
func (c *Config) Validate() error {
	if c.Generator.BaseURL == "" {
		return errors.New("generator.base_url is required")
	}
	if c.Generator.Timeout < 0 {
		return fmt.Errorf("generator.timeout must not be negative, got %s", c.Generator.Timeout)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if err := c.Defaults.Settings().Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if c.Actions.TestBatchSize <= 0 {
		return fmt.Errorf("actions.test_batch_size must be positive, got %d", c.Actions.TestBatchSize)
	}
	return nil
}
