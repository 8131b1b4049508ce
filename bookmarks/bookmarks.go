// Package bookmarks provides persistent reading-position storage.
package bookmarks

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Bookmark represents a saved reading position. HeadingPath is the
// breadcrumb trail that was active when the bookmark was taken, kept
// so the list can show where in the document it points.
type Bookmark struct {
	Source      string    `json:"source"` // URL or file path
	Title       string    `json:"title"`
	HeadingPath []string  `json:"heading_path,omitempty"`
	Scroll      int       `json:"scroll"`
	AddedAt     time.Time `json:"added_at"`
}

// Store manages the bookmark collection.
type Store struct {
	path      string
	Bookmarks []Bookmark `json:"bookmarks"`
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "headway"), nil
}

// Load reads bookmarks from disk, starting empty if the file doesn't exist.
func Load() (*Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "bookmarks.json")
	store := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, store); err != nil {
		return nil, err
	}

	return store, nil
}

// Save writes bookmarks to disk.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Add saves a reading position. The same source may be bookmarked at
// several positions; only an exact source+scroll duplicate is refused.
func (s *Store) Add(source, title string, headingPath []string, scroll int) bool {
	for _, b := range s.Bookmarks {
		if b.Source == source && b.Scroll == scroll {
			return false
		}
	}

	s.Bookmarks = append(s.Bookmarks, Bookmark{
		Source:      source,
		Title:       title,
		HeadingPath: headingPath,
		Scroll:      scroll,
		AddedAt:     time.Now(),
	})
	return true
}

// Remove removes a bookmark by index.
func (s *Store) Remove(index int) bool {
	if index < 0 || index >= len(s.Bookmarks) {
		return false
	}
	s.Bookmarks = append(s.Bookmarks[:index], s.Bookmarks[index+1:]...)
	return true
}

// Len returns the number of bookmarks.
func (s *Store) Len() int {
	return len(s.Bookmarks)
}
