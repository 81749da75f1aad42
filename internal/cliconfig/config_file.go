package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type FileConfig struct {
	QueueURL   string `toml:"queue_url"`
	ServiceURL string `toml:"service_url"`
	AuthKey    string `toml:"auth_key"`

	SpoolDir string `toml:"spool_dir"`

	Workers        int    `toml:"workers"`
	RetryLimit     int    `toml:"retry_limit"`
	RetryDelay     string `toml:"retry_delay"`
	BufferCapacity int    `toml:"buffer_capacity"`
	GroupSize      int    `toml:"group_size"`

	HTTPTimeout  string `toml:"http_timeout"`
	FlushTimeout string `toml:"flush_timeout"`

	Verbose *bool `toml:"verbose"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.bufq/config.toml, if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".bufq", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("queue-url", fc.QueueURL, &cfg.QueueURL)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("spool-dir", fc.SpoolDir, &cfg.SpoolDir)

	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("retry-limit", fc.RetryLimit, &cfg.RetryLimit)
	s.setInt("buffer-capacity", fc.BufferCapacity, &cfg.BufferCapacity)
	s.setInt("group-size", fc.GroupSize, &cfg.GroupSize)

	if err := s.setDuration("retry-delay", fc.RetryDelay, &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-timeout", fc.FlushTimeout, &cfg.FlushTimeout); err != nil {
		return err
	}

	s.setBool("verbose", fc.Verbose, &cfg.Verbose)

	return nil
}
