package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from .env files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	RunFrequencySeconds int64         `mapstructure:"run_frequency"`
	FreshnessWindow     time.Duration `mapstructure:"-"`

	FeishuWebhook string `mapstructure:"feishu_webhook" json:"-"`
	Dedupe        bool   `mapstructure:"dedupe"`

	SourcesFile        string        `mapstructure:"sources_file"`
	PublishersFile     string        `mapstructure:"publishers_file"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	UserAgent          string        `mapstructure:"user_agent"`

	HistoryStore           string        `mapstructure:"history_store"`
	HistoryPath            string        `mapstructure:"history_path"`
	HistoryTTLSeconds      int64         `mapstructure:"history_ttl_seconds"`
	HistoryCleanupSeconds  int64         `mapstructure:"history_cleanup_interval_seconds"`
	HistoryTTL             time.Duration `mapstructure:"-"`
	HistoryCleanupInterval time.Duration `mapstructure:"-"`
}

// DefaultRunFrequency is the freshness window used when RUN_FREQUENCY is unset.
const DefaultRunFrequency = 3600

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-feed-notifier")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("run_frequency", DefaultRunFrequency) // seconds
	v.SetDefault("feishu_webhook", "")
	v.SetDefault("dedupe", true)
	v.SetDefault("sources_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("user_agent", "samvad-feed-notifier/1.0")
	v.SetDefault("history_store", "none")
	v.SetDefault("history_path", "./data/history.db")
	v.SetDefault("history_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("history_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates raw values and derives durations.
func (c *Config) finalize() error {
	if c.RunFrequencySeconds <= 0 {
		return fmt.Errorf("invalid run_frequency (must be positive seconds)")
	}
	c.FreshnessWindow = time.Duration(c.RunFrequencySeconds) * time.Second

	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	if c.HistoryTTLSeconds <= 0 {
		return fmt.Errorf("invalid history_ttl_seconds (must be positive seconds)")
	}
	if c.HistoryCleanupSeconds <= 0 {
		return fmt.Errorf("invalid history_cleanup_interval_seconds (must be positive seconds)")
	}
	c.HistoryTTL = time.Duration(c.HistoryTTLSeconds) * time.Second
	c.HistoryCleanupInterval = time.Duration(c.HistoryCleanupSeconds) * time.Second

	return nil
}

// DeliveryConfigured reports whether the Feishu webhook is set.
func (c *Config) DeliveryConfigured() bool {
	return c != nil && c.FeishuWebhook != ""
}
