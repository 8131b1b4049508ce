// Package cache persists fetched pages and file outlines between runs.
//
// Pages land in a bbolt file under the user cache directory, keyed by
// URL and aged out by TTL. A small in-process map fronts the disk
// store so repeated opens of the same source within one session skip
// the decode. Outlines are keyed by file path and invalidated by
// modification time rather than TTL.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"headway/crumb"
)

// Page is a cached fetch result.
type Page struct {
	Body        []byte    `msgpack:"body"`
	ContentType string    `msgpack:"contentType"`
	FinalURL    string    `msgpack:"finalURL"`
	UsedBrowser bool      `msgpack:"usedBrowser"`
	FetchedAt   time.Time `msgpack:"fetchedAt"`
}

// Outline is a cached heading scan of a local file.
type Outline struct {
	Title     string          `msgpack:"title"`
	Headings  []crumb.Heading `msgpack:"headings"`
	ModTime   time.Time       `msgpack:"modTime"`
	ScannedAt time.Time       `msgpack:"scannedAt"`
}

var (
	bucketPages    = []byte("pages")
	bucketOutlines = []byte("outlines")
)

// Store is the page and outline cache. A nil *Store is a valid store
// that misses every get and drops every put, so callers can disable
// caching by just not opening one.
type Store struct {
	db  *bolt.DB
	ttl time.Duration

	mu  sync.RWMutex
	mem map[string]*Page
}

// DefaultPath returns the cache file path under the user cache dir.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "headway", "cache.db"), nil
}

// Open opens (creating if needed) the cache at path. Pages older than
// ttl are treated as misses; ttl <= 0 means pages never expire.
func Open(path string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	// The timeout bounds the flock wait when another process holds the
	// cache open.
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketPages); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketOutlines)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing cache buckets: %w", err)
	}

	return &Store{db: db, ttl: ttl, mem: make(map[string]*Page)}, nil
}

// Close releases the cache file.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) expired(fetchedAt time.Time) bool {
	return s.ttl > 0 && time.Since(fetchedAt) > s.ttl
}

// GetPage returns the cached page for url, if present and fresh.
func (s *Store) GetPage(url string) (*Page, bool) {
	if s == nil {
		return nil, false
	}

	s.mu.RLock()
	p, ok := s.mem[url]
	s.mu.RUnlock()
	if ok && !s.expired(p.FetchedAt) {
		return p, true
	}

	var page Page
	found := false
	s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPages).Get([]byte(url))
		if raw == nil {
			return nil
		}
		if err := msgpack.Unmarshal(raw, &page); err != nil {
			return nil // corrupt entry reads as a miss
		}
		found = true
		return nil
	})
	if !found || s.expired(page.FetchedAt) {
		return nil, false
	}

	s.mu.Lock()
	s.mem[url] = &page
	s.mu.Unlock()
	return &page, true
}

// PutPage stores a fetched page under url.
func (s *Store) PutPage(url string, p *Page) error {
	if s == nil {
		return nil
	}

	raw, err := msgpack.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}

	s.mu.Lock()
	s.mem[url] = p
	s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPages).Put([]byte(url), raw)
	})
}

// GetOutline returns the cached outline for path when the file has not
// changed since the scan.
func (s *Store) GetOutline(path string, modTime time.Time) (*Outline, bool) {
	if s == nil {
		return nil, false
	}

	var o Outline
	found := false
	s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketOutlines).Get([]byte(path))
		if raw == nil {
			return nil
		}
		if err := msgpack.Unmarshal(raw, &o); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found || !o.ModTime.Equal(modTime) {
		return nil, false
	}
	return &o, true
}

// PutOutline stores a heading scan for path.
func (s *Store) PutOutline(path string, o *Outline) error {
	if s == nil {
		return nil
	}

	raw, err := msgpack.Marshal(o)
	if err != nil {
		return fmt.Errorf("encoding outline: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOutlines).Put([]byte(path), raw)
	})
}

// Prune deletes expired pages and returns how many were removed.
func (s *Store) Prune() (int, error) {
	if s == nil {
		return 0, nil
	}

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPages)
		c := b.Cursor()
		var stale [][]byte
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var p Page
			if err := msgpack.Unmarshal(v, &p); err != nil || s.expired(p.FetchedAt) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for url, p := range s.mem {
		if s.expired(p.FetchedAt) {
			delete(s.mem, url)
		}
	}
	s.mu.Unlock()
	return removed, nil
}
