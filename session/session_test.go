package session

import (
	"path/filepath"
	"testing"
)

// Point os.UserConfigDir at a temp dir for the duration of a test.
func tempConfigDir(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, ".config"))
}

func TestSaveLoad(t *testing.T) {
	tempConfigDir(t)

	s := &Session{
		Buffers: []Buffer{
			{
				History: []ViewState{{Source: "notes.md", Scroll: 0, View: "preview"}},
				Current: ViewState{Source: "guide.md", Scroll: 42, View: "source"},
				Forward: []ViewState{{Source: "readme.md", Scroll: 7, View: "preview"}},
			},
			{
				Current: ViewState{Source: "https://example.com/doc", Scroll: 3, View: "preview"},
			},
		},
		CurrentBufferIdx: 1,
		SearchHistory:    []string{"install", "usage"},
		OpenHistory:      []string{"notes.md"},
	}

	if err := Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(got.Buffers) != 2 {
		t.Fatalf("expected 2 buffers, got %d", len(got.Buffers))
	}
	if got.CurrentBufferIdx != 1 {
		t.Errorf("expected buffer index 1, got %d", got.CurrentBufferIdx)
	}

	b := got.Buffers[0]
	if b.Current.Source != "guide.md" || b.Current.Scroll != 42 || b.Current.View != "source" {
		t.Errorf("current state wrong: %+v", b.Current)
	}
	if len(b.History) != 1 || b.History[0].Source != "notes.md" {
		t.Errorf("history not preserved: %+v", b.History)
	}
	if len(b.Forward) != 1 || b.Forward[0].Scroll != 7 {
		t.Errorf("forward stack not preserved: %+v", b.Forward)
	}

	if len(got.SearchHistory) != 2 || got.SearchHistory[1] != "usage" {
		t.Errorf("search history not preserved: %v", got.SearchHistory)
	}
	if len(got.OpenHistory) != 1 || got.OpenHistory[0] != "notes.md" {
		t.Errorf("open history not preserved: %v", got.OpenHistory)
	}
}

func TestLoadMissing(t *testing.T) {
	tempConfigDir(t)

	// No session has been saved; callers treat the error as "start fresh".
	if _, err := Load(); err == nil {
		t.Error("expected error when no session file exists")
	}
}

func TestClear(t *testing.T) {
	tempConfigDir(t)

	if err := Save(&Session{Buffers: []Buffer{{Current: ViewState{Source: "a.md"}}}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Error("expected error after Clear")
	}
}
