package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Extensions) == 0 {
		t.Error("expected default extensions")
	}
	if cfg.Version != "1.0" {
		t.Errorf("expected version 1.0, got %q", cfg.Version)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParseConfig(t *testing.T) {
	data := `extensions:
  - .tmpl
excludes:
  - "*_test.tmpl"
jobs: 8
cache_path: /tmp/tmplmin-cache.db
keep_comments: true
`
	cfg, err := ParseConfig([]byte(data))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != ".tmpl" {
		t.Errorf("expected extensions [.tmpl], got %v", cfg.Extensions)
	}
	if cfg.Jobs != 8 {
		t.Errorf("expected jobs 8, got %d", cfg.Jobs)
	}
	if cfg.CachePath != "/tmp/tmplmin-cache.db" {
		t.Errorf("unexpected cache path %q", cfg.CachePath)
	}
	if !cfg.KeepComments {
		t.Error("expected keep_comments true")
	}
	if cfg.Version != "1.0" {
		t.Errorf("expected default version, got %q", cfg.Version)
	}
}

func TestParseConfigFillsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("jobs: 2\n"))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if len(cfg.Extensions) != 3 {
		t.Errorf("expected default extensions, got %v", cfg.Extensions)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"jobs too large", "jobs: 1000\n", "jobs must be at most 256"},
		{"jobs negative", "jobs: -1\n", "jobs must be at least 0"},
		{"extension without dot", "extensions:\n  - tmpl\n", "must start with"},
		{"empty exclude", "excludes:\n  - \"\"\n", "must not be empty"},
		{"broken yaml", "jobs: [\n", "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestMatchesExtension(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{"index.html", true},
		{"layout.tmpl", true},
		{"page.gohtml", true},
		{"main.go", false},
		{"README.md", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := cfg.MatchesExtension(tt.path); got != tt.want {
			t.Errorf("MatchesExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExcluded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Excludes = []string{"*_test.tmpl", "vendor"}

	tests := []struct {
		path string
		want bool
	}{
		{"layout_test.tmpl", true},
		{"pages/form_test.tmpl", true},
		{"vendor", true},
		{"layout.tmpl", false},
		{"pages/form.tmpl", false},
	}

	for _, tt := range tests {
		if got := cfg.Excluded(tt.path); got != tt.want {
			t.Errorf("Excluded(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Jobs = 4
	cfg.KeepComments = true

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Jobs != 4 {
		t.Errorf("expected jobs 4, got %d", loaded.Jobs)
	}
	if !loaded.KeepComments {
		t.Error("expected keep_comments to survive the round trip")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Version != "1.0" {
		t.Errorf("expected default config, got version %q", cfg.Version)
	}
}
