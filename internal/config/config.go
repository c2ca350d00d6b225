package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	OverpassURL        string        `mapstructure:"overpass_uri"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	JobsFile            string        `mapstructure:"jobs_file"`
	PublishersFile      string        `mapstructure:"publishers_file"`
	Workdir             string        `mapstructure:"workdir"`
	CronIntervalSeconds int64         `mapstructure:"cron_interval"`
	CronInterval        time.Duration `mapstructure:"-"`
	CronOnce            bool          `mapstructure:"cron_once"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "overpass-harvester")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("overpass_uri", "https://overpass-api.de")
	v.SetDefault("http_timeout_seconds", 0) // transport default
	v.SetDefault("jobs_file", "./configs/jobs.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("workdir", "./workdir")
	v.SetDefault("cron_interval", 3600) // seconds
	v.SetDefault("cron_once", false)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/jobs.db")
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("metrics_addr", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.OverpassURL = strings.TrimSpace(cfg.OverpassURL)
	if cfg.OverpassURL == "" {
		return nil, fmt.Errorf("overpass_uri must not be empty")
	}
	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.CronIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid cron_interval (must be positive seconds)")
	}
	cfg.CronInterval = time.Duration(cfg.CronIntervalSeconds) * time.Second

	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// OverpassURI returns the base URL of the Overpass instance without a trailing slash.
func (c *Config) OverpassURI() string {
	if c == nil {
		return ""
	}
	return strings.TrimRight(c.OverpassURL, "/")
}
