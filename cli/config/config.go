package config

import (
	"fmt"
	"time"

	"github.com/pithecene-io/toggl-fetch/notify"
	"github.com/pithecene-io/toggl-fetch/output"
)

// Config represents a toggl-fetch config.yml file.
// All values are optional and act as defaults for fetch flags.
// CLI flags and TOGGL_FETCH_* environment variables always override
// config values.
type Config struct {
	APIToken   string        `yaml:"api_token"`
	Workspace  string        `yaml:"workspace"`
	Output     string        `yaml:"output"`
	OrderField string        `yaml:"order_field"`
	NoUpdate   bool          `yaml:"no_update"`
	Timeout    Duration      `yaml:"timeout"`
	Retry      RetryConfig   `yaml:"retry"`
	Storage    StorageConfig `yaml:"storage"`
	Notify     NotifyConfig  `yaml:"notify"`
}

// RetryConfig holds API retry defaults from the config file.
// Zero values fall back to the api client defaults.
type RetryConfig struct {
	Attempts int      `yaml:"attempts"`
	Delay    Duration `yaml:"delay"`
}

// StorageConfig holds S3 output defaults from the config file.
// Only consulted when the output destination is an s3:// URL.
type StorageConfig struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// NotifyConfig holds completion webhook defaults from the config file.
// An empty URL disables notification.
type NotifyConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// S3 converts the storage section into an output.S3Config.
func (c *Config) S3() output.S3Config {
	return output.S3Config{
		Region:       c.Storage.Region,
		Endpoint:     c.Storage.Endpoint,
		UsePathStyle: c.Storage.PathStyle,
	}
}

// Webhook converts the notify section into a notify.Config. An omitted
// retries key falls back to notify.DefaultRetries; an explicit `retries: 0`
// disables retries.
func (c *Config) Webhook() notify.Config {
	wc := notify.Config{
		URL:     c.Notify.URL,
		Headers: c.Notify.Headers,
		Timeout: c.Notify.Timeout.Duration,
		Retries: notify.DefaultRetries,
	}
	if c.Notify.Retries != nil {
		wc.Retries = *c.Notify.Retries
	}
	return wc
}
