package bookmarks

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestAdd(t *testing.T) {
	s := &Store{}

	if !s.Add("guide.md", "Guide", []string{"Setup", "Install"}, 120) {
		t.Error("first Add should return true")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 bookmark, got %d", s.Len())
	}

	b := s.Bookmarks[0]
	if b.Title != "Guide" {
		t.Errorf("expected title %q, got %q", "Guide", b.Title)
	}
	if len(b.HeadingPath) != 2 || b.HeadingPath[1] != "Install" {
		t.Errorf("heading path not recorded: %v", b.HeadingPath)
	}
	if b.AddedAt.IsZero() {
		t.Error("expected AddedAt to be set")
	}
}

func TestAddDuplicate(t *testing.T) {
	s := &Store{}
	s.Add("guide.md", "Guide", nil, 120)

	// Exact source+scroll duplicate is refused.
	if s.Add("guide.md", "Guide", nil, 120) {
		t.Error("duplicate Add should return false")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 bookmark after duplicate, got %d", s.Len())
	}

	// Same source at a different position is a new bookmark.
	if !s.Add("guide.md", "Guide", nil, 300) {
		t.Error("Add at new scroll position should return true")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 bookmarks, got %d", s.Len())
	}
}

func TestRemove(t *testing.T) {
	s := &Store{}
	s.Add("a.md", "A", nil, 0)
	s.Add("b.md", "B", nil, 0)
	s.Add("c.md", "C", nil, 0)

	if !s.Remove(1) {
		t.Error("Remove should return true for valid index")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", s.Len())
	}
	if s.Bookmarks[0].Source != "a.md" || s.Bookmarks[1].Source != "c.md" {
		t.Errorf("remaining order wrong: %q, %q", s.Bookmarks[0].Source, s.Bookmarks[1].Source)
	}

	if s.Remove(5) {
		t.Error("Remove should return false for out-of-range index")
	}
	if s.Remove(-1) {
		t.Error("Remove should return false for negative index")
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")

	s := &Store{path: path}
	s.Add("guide.md", "Guide", []string{"Setup"}, 120)
	s.Add("https://example.com/doc", "Doc", nil, 0)

	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	s2 := &Store{path: path}
	if err := json.Unmarshal(data, s2); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if s2.Len() != 2 {
		t.Fatalf("expected 2 bookmarks after load, got %d", s2.Len())
	}
	if s2.Bookmarks[0].HeadingPath[0] != "Setup" {
		t.Errorf("heading path not preserved: %v", s2.Bookmarks[0].HeadingPath)
	}
}
