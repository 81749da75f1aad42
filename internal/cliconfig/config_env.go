package cliconfig

import (
	"fmt"
	"os"
	"strconv"
)

// ApplyEnvConfig applies configuration from environment variables (BUFQ_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("queue-url", os.Getenv("BUFQ_QUEUE_URL"), &cfg.QueueURL)
	s.setString("service-url", os.Getenv("BUFQ_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("BUFQ_AUTH_KEY"), &cfg.AuthKey)
	s.setString("spool-dir", os.Getenv("BUFQ_SPOOL_DIR"), &cfg.SpoolDir)

	if err := envInt(s, "workers", "BUFQ_WORKERS", &cfg.Workers); err != nil {
		return err
	}
	if err := envInt(s, "retry-limit", "BUFQ_RETRY_LIMIT", &cfg.RetryLimit); err != nil {
		return err
	}
	if err := envInt(s, "buffer-capacity", "BUFQ_BUFFER_CAPACITY", &cfg.BufferCapacity); err != nil {
		return err
	}
	if err := envInt(s, "group-size", "BUFQ_GROUP_SIZE", &cfg.GroupSize); err != nil {
		return err
	}

	if err := s.setDuration("retry-delay", os.Getenv("BUFQ_RETRY_DELAY"), &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", os.Getenv("BUFQ_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-timeout", os.Getenv("BUFQ_FLUSH_TIMEOUT"), &cfg.FlushTimeout); err != nil {
		return err
	}

	return nil
}

// envInt parses an integer environment variable and applies it through the
// setter's precedence rules.
func envInt(s *configSetter, flag, env string, dst *int) error {
	raw := os.Getenv(env)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", env, raw, err)
	}
	s.setInt(flag, v, dst)
	return nil
}
