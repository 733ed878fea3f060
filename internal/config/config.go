// Package config loads mediamix configuration from a YAML file, .env files
// and environment variables.
//
// Environment variables always win over the file. They are named by the
// `env` struct tag of each field, e.g.
//
//	MEDIAMIX_SOURCE=drive
//	MEDIAMIX_DRIVE_FOLDER_ID=1iSkWeB7FcJ1pNx4c6Rx_XBjft5UeIovP
//	MEDIAMIX_DRIVE_API_KEY=...
//
// .env files are loaded first: ENV_FILE if set, otherwise .env.local and .env.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gauthierbraillon/mediamix/internal/logger"
)

// Source kinds.
const (
	KindSample      = "sample"
	KindSpreadsheet = "spreadsheet"
	KindBucket      = "bucket"
	KindDrive       = "drive"
)

// Defaults.
const (
	DefaultPollInterval   = 10 * time.Second
	DefaultFetchTimeout   = 30 * time.Second
	DefaultWebhookTimeout = 10 * time.Second
	DefaultAddr           = ":8080"
	DefaultEventsChannel  = "mediamix:gallery"
	DefaultDriveBaseURL   = "https://www.googleapis.com"
)

// Config is the complete mediamix configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Poll     PollConfig     `yaml:"poll"`
	Generate GenerateConfig `yaml:"generate"`
	Server   ServerConfig   `yaml:"server"`
	Events   EventsConfig   `yaml:"events"`
	Log      logger.Config  `yaml:"log"`
}

// SourceConfig selects and configures the backend the gallery reads from.
type SourceConfig struct {
	Kind        string            `yaml:"kind" env:"MEDIAMIX_SOURCE"`
	Spreadsheet SpreadsheetConfig `yaml:"spreadsheet"`
	Bucket      BucketConfig      `yaml:"bucket"`
	Drive       DriveConfig       `yaml:"drive"`
}

// SpreadsheetConfig points at a published spreadsheet export.
type SpreadsheetConfig struct {
	URL    string `yaml:"url" env:"MEDIAMIX_SPREADSHEET_URL"`
	Format string `yaml:"format" env:"MEDIAMIX_SPREADSHEET_FORMAT"`
}

// BucketConfig points at one object-storage bucket.
type BucketConfig struct {
	BaseURL string `yaml:"base_url" env:"MEDIAMIX_BUCKET_URL"`
	Bucket  string `yaml:"bucket" env:"MEDIAMIX_BUCKET_NAME"`
	Prefix  string `yaml:"prefix" env:"MEDIAMIX_BUCKET_PREFIX"`
	APIKey  string `yaml:"api_key" env:"MEDIAMIX_BUCKET_API_KEY"`
}

// DriveConfig points at one drive folder.
type DriveConfig struct {
	BaseURL  string `yaml:"base_url" env:"MEDIAMIX_DRIVE_API_URL"`
	FolderID string `yaml:"folder_id" env:"MEDIAMIX_DRIVE_FOLDER_ID"`
	APIKey   string `yaml:"api_key" env:"MEDIAMIX_DRIVE_API_KEY"`
}

// PollConfig controls the refresh lifecycle.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" env:"MEDIAMIX_POLL_INTERVAL"`
	// Schedule is an optional cron spec that replaces Interval.
	Schedule     string        `yaml:"schedule" env:"MEDIAMIX_POLL_SCHEDULE"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"MEDIAMIX_FETCH_TIMEOUT"`
}

// GenerateConfig configures the generation-request webhook.
type GenerateConfig struct {
	WebhookURL string        `yaml:"webhook_url" env:"MEDIAMIX_WEBHOOK_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"MEDIAMIX_WEBHOOK_TIMEOUT"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr  string `yaml:"addr" env:"MEDIAMIX_ADDR"`
	Debug bool   `yaml:"debug" env:"MEDIAMIX_DEBUG"`
}

// EventsConfig configures where change observations are published.
// Publishing is disabled when RedisAddress is empty.
type EventsConfig struct {
	RedisAddress  string `yaml:"redis_address" env:"MEDIAMIX_REDIS_ADDRESS"`
	RedisPassword string `yaml:"redis_password" env:"MEDIAMIX_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"MEDIAMIX_REDIS_DB"`
	Channel       string `yaml:"channel" env:"MEDIAMIX_EVENTS_CHANNEL"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.Source.Kind == "" {
		c.Source.Kind = KindSample
	}
	if c.Source.Spreadsheet.Format == "" {
		c.Source.Spreadsheet.Format = "csv"
	}
	if c.Source.Drive.BaseURL == "" {
		c.Source.Drive.BaseURL = DefaultDriveBaseURL
	}
	if c.Poll.Interval == 0 {
		c.Poll.Interval = DefaultPollInterval
	}
	if c.Poll.FetchTimeout == 0 {
		c.Poll.FetchTimeout = DefaultFetchTimeout
	}
	if c.Generate.Timeout == 0 {
		c.Generate.Timeout = DefaultWebhookTimeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Events.Channel == "" {
		c.Events.Channel = DefaultEventsChannel
	}
	c.Log.SetDefaults()
}

// Path returns the config file path from MEDIAMIX_CONFIG, or fallback.
func Path(fallback string) string {
	if p := os.Getenv("MEDIAMIX_CONFIG"); p != "" {
		return p
	}
	return fallback
}

// Load reads path (if non-empty), applies defaults and then environment
// overrides. A missing file is an error only when path was given.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	cfg.SetDefaults()
	return &cfg, nil
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
