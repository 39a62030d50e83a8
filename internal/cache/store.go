package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the cache as a single JSON document. The file shape is
// stable across versions: {"articles": {...}, "last_updated": "..."|null}.
// One writer at a time is assumed; there is no cross-process locking, so
// overlapping runs would race load-mutate-save (last writer wins).
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the cache file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted cache. A missing or corrupt file yields a fresh
// empty cache rather than an error; there is no state worth failing over.
func (s *Store) Load() *Cache {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return NewCache()
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return NewCache()
	}
	if c.Articles == nil {
		c.Articles = make(map[string]*CachedArticle)
	}
	return &c
}

// Save overwrites the persisted cache wholesale. The write goes to a temp
// file in the same directory and is renamed into place, so a reader never
// observes a partial document.
func (s *Store) Save(c *Cache) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".news_cache-*.json")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}

// Stats reports the number of cached articles, how many are highlights,
// and the cache file size in bytes (0 if the file does not exist yet).
func (s *Store) Stats() (count, highlights int, size int64) {
	c := s.Load()
	count = len(c.Articles)
	for _, a := range c.Articles {
		if a.IsHighlight {
			highlights++
		}
	}
	if fi, err := os.Stat(s.path); err == nil {
		size = fi.Size()
	}
	return count, highlights, size
}
