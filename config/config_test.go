package config

import (
	"os"
	"path/filepath"
	"testing"

	"headway/crumb"
)

func TestDefaultCrumb(t *testing.T) {
	got := Default().Crumb()
	want := crumb.Config{Mode: crumb.ModeDefault, Max: 0, ScrollBehavior: crumb.BehaviorAuto}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCrumbMapping(t *testing.T) {
	cfg := Default()
	cfg.Display.Mode = "concise"
	cfg.Display.MaxEntries = 3
	cfg.Display.ScrollBehavior = "smooth"

	got := cfg.Crumb()
	want := crumb.Config{Mode: crumb.ModeConcise, Max: 3, ScrollBehavior: crumb.BehaviorSmooth}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCrumbFallsBackOnGarbage(t *testing.T) {
	cfg := Default()
	cfg.Display.Mode = "shiny"
	cfg.Display.ScrollBehavior = "teleport"
	cfg.Display.MaxEntries = -5

	got := cfg.Crumb()
	want := crumb.Config{Mode: crumb.ModeDefault, Max: 0, ScrollBehavior: crumb.BehaviorAuto}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadIntoLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	user := `
display:
  mode: concise
  maxEntries: 2
keybindings:
  quit: Q
`
	if err := os.WriteFile(path, []byte(user), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadInto(cfg, path); err != nil {
		t.Fatal(err)
	}

	if cfg.Display.Mode != "concise" {
		t.Errorf("mode: got %q, want concise", cfg.Display.Mode)
	}
	if cfg.Display.MaxEntries != 2 {
		t.Errorf("maxEntries: got %d, want 2", cfg.Display.MaxEntries)
	}
	if cfg.Keybindings.Quit != "Q" {
		t.Errorf("quit binding: got %q, want Q", cfg.Keybindings.Quit)
	}

	// Untouched keys keep their defaults.
	if cfg.Display.MaxWidth != 80 {
		t.Errorf("maxWidth default lost: got %d", cfg.Display.MaxWidth)
	}
	if cfg.Keybindings.ScrollDown != "j" {
		t.Errorf("scrollDown default lost: got %q", cfg.Keybindings.ScrollDown)
	}
	if cfg.Fetcher.TimeoutSeconds != 30 {
		t.Errorf("timeout default lost: got %d", cfg.Fetcher.TimeoutSeconds)
	}
}

func TestLoadIntoRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("display: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := loadInto(Default(), path); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.Display.MaxEntries = -1
	cfg.Display.MaxWidth = -10
	cfg.Fetcher.TimeoutSeconds = 0
	cfg.Cache.TTLHours = -2

	cfg.normalize()

	if cfg.Display.MaxEntries != 0 {
		t.Errorf("maxEntries: got %d, want 0", cfg.Display.MaxEntries)
	}
	if cfg.Display.MaxWidth != 0 {
		t.Errorf("maxWidth: got %d, want 0", cfg.Display.MaxWidth)
	}
	if cfg.Fetcher.TimeoutSeconds != 30 {
		t.Errorf("timeout: got %d, want 30", cfg.Fetcher.TimeoutSeconds)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Errorf("ttl: got %d, want 24", cfg.Cache.TTLHours)
	}
}

func TestDefaultYAMLRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(DefaultYAML()), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadInto(cfg, path); err != nil {
		t.Fatalf("default YAML should parse: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("default YAML drifted from Default():\n got %+v\nwant %+v", cfg, Default())
	}
}

func TestKeyMatching(t *testing.T) {
	tests := []struct {
		name  string
		check bool
		want  bool
	}{
		{"single match", MatchSingle('q', "q"), true},
		{"single miss", MatchSingle('x', "q"), false},
		{"single vs multi binding", MatchSingle('g', "gg"), false},
		{"prefix completes", MatchWithPrefix("g", 'g', "gg"), true},
		{"prefix wrong second", MatchWithPrefix("g", 't', "gg"), false},
		{"prefix wrong first", MatchWithPrefix("x", 'g', "gg"), false},
		{"starts binding", StartsBinding('g', "gt"), true},
		{"starts single is false", StartsBinding('q', "q"), false},
	}
	for _, tt := range tests {
		if tt.check != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.check, tt.want)
		}
	}
}
