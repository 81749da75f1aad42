// Package cliconfig holds configuration loading for the bufq CLI: defaults,
// TOML config file, BUFQ_* environment variables, and flag precedence.
// Precedence is flags > environment > file > defaults.
package cliconfig

import (
	"fmt"
	"os"
	"time"
)

// Config holds CLI configuration for bufq.
type Config struct {
	QueueURL   string
	ServiceURL string
	AuthKey    string

	SpoolDir string

	Workers        int
	RetryLimit     int
	RetryDelay     time.Duration
	BufferCapacity int
	GroupSize      int

	HTTPTimeout  time.Duration
	FlushTimeout time.Duration

	Verbose bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Workers:      32,
		RetryLimit:   5,
		RetryDelay:   100 * time.Millisecond,
		HTTPTimeout:  30 * time.Second,
		FlushTimeout: 60 * time.Second,
		AuthKey:      os.Getenv("BUFQ_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors and normalizes derived
// values.
func (c *Config) Validate() error {
	if c.QueueURL == "" {
		return fmt.Errorf("queue-url is required")
	}
	if c.ServiceURL == "" {
		return fmt.Errorf("service-url is required")
	}

	// Ensure no trailing slash
	if len(c.ServiceURL) > 0 && c.ServiceURL[len(c.ServiceURL)-1] == '/' {
		c.ServiceURL = c.ServiceURL[:len(c.ServiceURL)-1]
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("retry-limit must not be negative")
	}
	if c.GroupSize < 0 {
		return fmt.Errorf("group-size must not be negative")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value if present and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration value if not empty and flag not
// changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s duration %q: %w", flag, value, err)
	}
	*dst = d
	return nil
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
