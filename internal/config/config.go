package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML/JSON keys to Go struct fields.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP server port (default: 8080)
		BaseURL string `mapstructure:"base_url"` // Base URL of this deployment
	} `mapstructure:"server"`

	// Database configuration section for SQLite settings
	Database struct {
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// GeoIP configuration for the IP-to-country collaborator
	GeoIP struct {
		BaseURL        string `mapstructure:"base_url"`        // Base URL of the IP-info service
		TimeoutSeconds int    `mapstructure:"timeout_seconds"` // Bound on the per-click lookup
		FailOpen       bool   `mapstructure:"fail_open"`       // Lookup failure degrades to "unknown country" when true, rejects when false
	} `mapstructure:"geoip"`

	// Notify configuration for vendor callback delivery
	Notify struct {
		TimeoutSeconds int `mapstructure:"timeout_seconds"` // Bound on the single best-effort callback attempt
	} `mapstructure:"notify"`

	// Reporting holds the fixed civil timezone used for start/end timestamps.
	// Kept configurable so the stored semantic never silently shifts.
	Reporting struct {
		Timezone string `mapstructure:"timezone"`
	} `mapstructure:"reporting"`

	// RequestLog configuration for asynchronous request logging
	RequestLog struct {
		BufferSize  int `mapstructure:"buffer_size"`  // Size of the request-log channel buffer
		WorkerCount int `mapstructure:"worker_count"` // Number of worker goroutines persisting log rows
	} `mapstructure:"request_log"`

	// Monitor configuration for survey link health checking
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // Interval in minutes between link checks
	} `mapstructure:"monitor"`
}

// LoadConfig loads the application configuration using Viper.
// It supports environment variable overrides and YAML configuration files.
// Returns a populated Config struct or an error if configuration loading fails.
func LoadConfig() (*Config, error) {
	// Enable automatic environment variable binding, with dots replaced by
	// underscores (e.g. "server.port" becomes SERVER_PORT).
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Defaults are used when no config file is found or specific keys are missing
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "surveydash.db")
	viper.SetDefault("geoip.base_url", "https://ipinfo.io")
	viper.SetDefault("geoip.timeout_seconds", 5)
	viper.SetDefault("geoip.fail_open", true)
	viper.SetDefault("notify.timeout_seconds", 10)
	viper.SetDefault("reporting.timezone", "Asia/Kolkata")
	viper.SetDefault("request_log.buffer_size", 1000)
	viper.SetDefault("request_log.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal, the defaults above carry the application
			logrus.Info("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":     cfg.Server.Port,
		"database": cfg.Database.Name,
		"timezone": cfg.Reporting.Timezone,
	}).Info("Configuration loaded")

	return &cfg, nil
}

// ReportingLocation resolves the configured reporting timezone. Timestamps
// on ledger records are civil times in this location, never UTC-normalized.
func (c *Config) ReportingLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reporting timezone %q: %w", c.Reporting.Timezone, err)
	}
	return loc, nil
}

// GeoIPTimeout returns the bounded duration for one geo-IP lookup.
func (c *Config) GeoIPTimeout() time.Duration {
	return time.Duration(c.GeoIP.TimeoutSeconds) * time.Second
}

// NotifyTimeout returns the bounded duration for one vendor callback attempt.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notify.TimeoutSeconds) * time.Second
}
