package cache

import (
	"path/filepath"
	"testing"
	"time"

	"headway/crumb"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPageRoundTrip(t *testing.T) {
	s := openTestStore(t, time.Hour)

	page := &Page{
		Body:        []byte("# Hi\n"),
		ContentType: "text/markdown",
		FinalURL:    "https://example.org/readme",
		FetchedAt:   time.Now(),
	}
	if err := s.PutPage("https://example.org/readme", page); err != nil {
		t.Fatal(err)
	}

	got, ok := s.GetPage("https://example.org/readme")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got.Body) != "# Hi\n" || got.ContentType != "text/markdown" {
		t.Errorf("got %+v", got)
	}

	if _, ok := s.GetPage("https://example.org/other"); ok {
		t.Error("unexpected hit for unknown url")
	}
}

func TestPageExpiry(t *testing.T) {
	s := openTestStore(t, time.Minute)

	stale := &Page{Body: []byte("old"), FetchedAt: time.Now().Add(-2 * time.Minute)}
	if err := s.PutPage("u", stale); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.GetPage("u"); ok {
		t.Error("expired page should miss")
	}

	// ttl <= 0 disables expiry entirely.
	forever := openTestStore(t, 0)
	if err := forever.PutPage("u", stale); err != nil {
		t.Fatal(err)
	}
	if _, ok := forever.GetPage("u"); !ok {
		t.Error("zero ttl should never expire")
	}
}

func TestPagePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	page := &Page{Body: []byte("persisted"), FetchedAt: time.Now()}
	if err := s.PutPage("u", page); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, ok := s.GetPage("u")
	if !ok || string(got.Body) != "persisted" {
		t.Errorf("got %+v ok=%v", got, ok)
	}
}

func TestOutlineModTimeInvalidation(t *testing.T) {
	s := openTestStore(t, time.Hour)

	mod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := &Outline{
		Title: "Guide",
		Headings: []crumb.Heading{
			{Level: 1, Text: "Guide"},
			{Level: 2, Text: "Setup", Start: crumb.Position{Line: 4}},
		},
		ModTime:   mod,
		ScannedAt: time.Now(),
	}
	if err := s.PutOutline("/docs/guide.md", o); err != nil {
		t.Fatal(err)
	}

	got, ok := s.GetOutline("/docs/guide.md", mod)
	if !ok {
		t.Fatal("expected outline hit")
	}
	if got.Title != "Guide" || len(got.Headings) != 2 || got.Headings[1].Text != "Setup" {
		t.Errorf("got %+v", got)
	}
	if got.Headings[1].Start.Line != 4 {
		t.Errorf("heading position lost: %+v", got.Headings[1])
	}

	if _, ok := s.GetOutline("/docs/guide.md", mod.Add(time.Second)); ok {
		t.Error("changed mod time should miss")
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t, time.Minute)

	s.PutPage("fresh", &Page{FetchedAt: time.Now()})
	s.PutPage("stale1", &Page{FetchedAt: time.Now().Add(-time.Hour)})
	s.PutPage("stale2", &Page{FetchedAt: time.Now().Add(-2 * time.Hour)})

	removed, err := s.Prune()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed %d, want 2", removed)
	}
	if _, ok := s.GetPage("fresh"); !ok {
		t.Error("fresh page should survive prune")
	}
}

func TestNilStore(t *testing.T) {
	var s *Store

	if _, ok := s.GetPage("u"); ok {
		t.Error("nil store should miss")
	}
	if err := s.PutPage("u", &Page{}); err != nil {
		t.Error(err)
	}
	if _, ok := s.GetOutline("p", time.Now()); ok {
		t.Error("nil store should miss outlines")
	}
	if err := s.Close(); err != nil {
		t.Error(err)
	}
}
