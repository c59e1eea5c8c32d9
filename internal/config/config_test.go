package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Source.Brightness != "/sys/class/backlight/intel_backlight/brightness" {
		t.Errorf("unexpected source brightness path %q", cfg.Source.Brightness)
	}
	if cfg.Target.Brightness != "/sys/class/backlight/asus_screenpad/brightness" {
		t.Errorf("unexpected target brightness path %q", cfg.Target.Brightness)
	}
	if cfg.Poll.Interval.Duration() != 100*time.Millisecond {
		t.Errorf("poll interval = %v, want 100ms", cfg.Poll.Interval.Duration())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled by default")
	}
	if cfg.Healthcheck.Enabled {
		t.Error("healthcheck should be disabled by default")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
source:
  brightness: /tmp/fake/src/brightness
  max: /tmp/fake/src/max_brightness
poll:
  interval: 250ms
log:
  level: debug
history:
  enabled: true
  path: ${BACKLIGHTD_TEST_DB:/tmp/history.sqlite}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Source.Brightness != "/tmp/fake/src/brightness" {
		t.Errorf("source brightness = %q", cfg.Source.Brightness)
	}
	if cfg.Poll.Interval.Duration() != 250*time.Millisecond {
		t.Errorf("poll interval = %v, want 250ms", cfg.Poll.Interval.Duration())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.History.Enabled {
		t.Error("history not enabled")
	}
	// Env var unset - the inline default applies
	if cfg.History.Path != "/tmp/history.sqlite" {
		t.Errorf("history path = %q, want expanded default", cfg.History.Path)
	}

	// Unset sections still get defaults
	if cfg.Target.Brightness != "/sys/class/backlight/asus_screenpad/brightness" {
		t.Errorf("target brightness = %q, want default", cfg.Target.Brightness)
	}
	if cfg.Healthcheck.Port != 9377 {
		t.Errorf("healthcheck port = %d, want default", cfg.Healthcheck.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("poll:\n  interval: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted an invalid duration")
	}
}
