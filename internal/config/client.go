package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig is the device-side configuration, read from lifesync.yaml
// and LIFESYNC_* environment variables.
type ClientConfig struct {
	Server  ServerSection  `mapstructure:"server"`
	Sync    SyncSection    `mapstructure:"sync"`
	Network NetworkSection `mapstructure:"network"`
	Store   StoreSection   `mapstructure:"store"`
	Log     LogSection     `mapstructure:"log"`
}

type ServerSection struct {
	URL         string        `mapstructure:"url"`
	ClientToken string        `mapstructure:"client_token"`
	Password    string        `mapstructure:"password"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SyncSection struct {
	Enabled        bool          `mapstructure:"enabled"`
	WifiOnly       bool          `mapstructure:"wifi_only"`
	Interval       time.Duration `mapstructure:"interval"`
	MaxAttempts    uint          `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

type NetworkSection struct {
	// Metered marks the current connection as metered for wifi_only.
	Metered bool `mapstructure:"metered"`
}

type StoreSection struct {
	Path string `mapstructure:"path"`
}

type LogSection struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Configured reports whether a destination and credentials are set.
func (c ClientConfig) Configured() bool {
	return c.Server.URL != "" && c.Server.ClientToken != "" && c.Server.Password != ""
}

// Every key needs a default so that AutomaticEnv can see it on Unmarshal.
func setClientDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "")
	v.SetDefault("server.client_token", "")
	v.SetDefault("server.password", "")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.wifi_only", false)
	v.SetDefault("sync.interval", 30*time.Minute)
	v.SetDefault("sync.max_attempts", 5)
	v.SetDefault("sync.initial_backoff", 30*time.Second)
	v.SetDefault("sync.max_backoff", 10*time.Minute)
	v.SetDefault("network.metered", false)
	v.SetDefault("store.path", "lifesync.db")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}

// LoadClient reads path if given, otherwise looks for lifesync.yaml in the
// working directory. A missing default file is not an error.
func LoadClient(path string) (ClientConfig, error) {
	v := viper.New()
	setClientDefaults(v)

	v.SetEnvPrefix("LIFESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lifesync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return ClientConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Sync.Interval <= 0 {
		return cfg, fmt.Errorf("sync.interval must be positive, got %s", cfg.Sync.Interval)
	}
	if cfg.Sync.MaxAttempts == 0 {
		cfg.Sync.MaxAttempts = 1
	}
	return cfg, nil
}
