package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
queue_url = "orders"
service_url = "https://mq.example.com"
auth_key = "secret"
spool_dir = "/var/spool/bufq"
workers = 16
retry_limit = 3
retry_delay = "200ms"
buffer_capacity = 1000
group_size = 10
http_timeout = "10s"
flush_timeout = "2m"
verbose = true
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	if fc.QueueURL != "orders" || fc.ServiceURL != "https://mq.example.com" {
		t.Errorf("urls = %q, %q", fc.QueueURL, fc.ServiceURL)
	}
	if fc.Workers != 16 || fc.RetryLimit != 3 || fc.BufferCapacity != 1000 || fc.GroupSize != 10 {
		t.Errorf("ints = %d, %d, %d, %d", fc.Workers, fc.RetryLimit, fc.BufferCapacity, fc.GroupSize)
	}
	if fc.RetryDelay != "200ms" || fc.HTTPTimeout != "10s" || fc.FlushTimeout != "2m" {
		t.Errorf("durations = %q, %q, %q", fc.RetryDelay, fc.HTTPTimeout, fc.FlushTimeout)
	}
	if fc.Verbose == nil || !*fc.Verbose {
		t.Error("verbose not parsed")
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := writeConfig(t, `queue_url = [broken`)
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig accepted malformed TOML")
	}
}

func TestLoadFileConfig_Missing(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadFileConfig succeeded on a missing file")
	}
}

func TestApplyFileConfig(t *testing.T) {
	fc := FileConfig{
		QueueURL:   "orders",
		Workers:    16,
		RetryDelay: "200ms",
	}

	cfg := DefaultConfig()
	cfg.QueueURL = "from-flag"
	changed := map[string]bool{"queue-url": true}

	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.QueueURL != "from-flag" {
		t.Errorf("QueueURL = %q, explicit flag must win over file", cfg.QueueURL)
	}
	if cfg.Workers != 16 {
		t.Errorf("Workers = %d, want 16 from file", cfg.Workers)
	}
	if cfg.RetryDelay != 200*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 200ms from file", cfg.RetryDelay)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	cfg := DefaultConfig()
	err := ApplyFileConfig(&cfg, FileConfig{FlushTimeout: "soon"}, map[string]bool{})
	if err == nil {
		t.Error("ApplyFileConfig accepted an unparseable flush_timeout")
	}
}

func TestFileExists(t *testing.T) {
	path := writeConfig(t, "")
	if !FileExists(path) {
		t.Errorf("FileExists(%q) = false for an existing file", path)
	}
	if FileExists(filepath.Dir(path)) {
		t.Error("FileExists = true for a directory")
	}
	if FileExists(filepath.Join(t.TempDir(), "absent")) {
		t.Error("FileExists = true for a missing path")
	}
}
