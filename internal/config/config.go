// Package config loads bandwire settings from defaults, an optional YAML
// file and BANDWIRE_-prefixed environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix = "BANDWIRE"

	DefaultServerAddress  = "127.0.0.1:7070"
	DefaultClientAddress  = "127.0.0.1:7070"
	DefaultClientTimeout  = 500 * time.Millisecond
	DefaultClientAttempts = 10
	DefaultLogLevel       = "info"
)

var DefaultConfig = Config{
	Server:   ServerConfig{Address: DefaultServerAddress},
	Client:   ClientConfig{Address: DefaultClientAddress, Timeout: DefaultClientTimeout, Attempts: DefaultClientAttempts},
	LogLevel: DefaultLogLevel,
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server   ServerConfig `json:"server"    mapstructure:"server"`
	Client   ClientConfig `json:"client"    mapstructure:"client"`
	Store    StoreConfig  `json:"store"     mapstructure:"store"`
	LogLevel string       `json:"log_level" mapstructure:"log_level"`
}

type ServerConfig struct {
	Address string `json:"address" mapstructure:"address"`
}

type ClientConfig struct {
	Address  string        `json:"address"  mapstructure:"address"`
	Timeout  time.Duration `json:"timeout"  mapstructure:"timeout"`
	Attempts int           `json:"attempts" mapstructure:"attempts"`
}

// StoreConfig locates the SQLite file. An empty path keeps the collection in memory only.
type StoreConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
}

// Load reads the configuration. path names an optional YAML file; empty skips it.
func Load(path string) (*Config, error) {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)

	v.SetEnvPrefix(DefaultEnvPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	_ = v.BindEnv("server.address")
	v.SetDefault("server.address", DefaultServerAddress)

	_ = v.BindEnv("client.address")
	v.SetDefault("client.address", DefaultClientAddress)

	_ = v.BindEnv("client.timeout")
	v.SetDefault("client.timeout", DefaultClientTimeout)

	_ = v.BindEnv("client.attempts")
	v.SetDefault("client.attempts", DefaultClientAttempts)

	_ = v.BindEnv("store.path")
	v.SetDefault("store.path", "")

	_ = v.BindEnv("log_level")
	v.SetDefault("log_level", DefaultLogLevel)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the values the client and server depend on.
func (c *Config) Validate() error {
	if c.Client.Attempts < 1 {
		return fmt.Errorf("%w: client.attempts must be >= 1, got %d", ErrInvalidConfig, c.Client.Attempts)
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("%w: client.timeout must be > 0, got %v", ErrInvalidConfig, c.Client.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}
