package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Drill.Course != nil || cfg.Drill.Mastery != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesDrill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[drill]
course = "digits"
mastery = 85
min-tries = 3
emphasize-weak = true
timely-ms = 700
seed = 7
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	d := cfg.Drill
	if d.Course == nil || *d.Course != "digits" {
		t.Fatalf("unexpected course: %v", d.Course)
	}
	if d.Mastery == nil || *d.Mastery != 85 || d.MinTries == nil || *d.MinTries != 3 {
		t.Fatalf("unexpected thresholds: %+v", d)
	}
	if d.EmphasizeWeak == nil || !*d.EmphasizeWeak {
		t.Fatalf("expected emphasize-weak")
	}
	if d.TimelyMs == nil || *d.TimelyMs != 700 || d.Seed == nil || *d.Seed != 7 {
		t.Fatalf("unexpected timing/seed: %+v", d)
	}
	if d.MaxWeak != nil || d.EntireSet != nil {
		t.Fatalf("unset keys must stay nil")
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[drill]\nwords = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "drill.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "morsedrill", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "morsedrill", "morsedrill.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}
