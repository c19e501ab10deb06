package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// AdviceEntry is one cached model answer.
type AdviceEntry struct {
	Model   string    `json:"model"`
	URL     string    `json:"url"`
	Advice  string    `json:"advice"`
	SavedAt time.Time `json:"savedAt"`
}

// AdviceCache stores advisor answers as <key>.json files, keyed by model and
// prompt so a changed page or model never hits a stale answer.
type AdviceCache struct {
	Dir         string
	StrictPerms bool
}

// KeyFrom derives the cache key for a model and prompt.
func KeyFrom(model string, prompt string) string {
	return digest(model, prompt)
}

func (c *AdviceCache) path(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the entry stored under key. A miss is (zero, false, nil).
func (c *AdviceCache) Get(_ context.Context, key string) (AdviceEntry, bool, error) {
	if c == nil {
		return AdviceEntry{}, false, ErrNoDir
	}
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return AdviceEntry{}, false, err
	}
	p := c.path(key)
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return AdviceEntry{}, false, nil
	}
	if err != nil {
		return AdviceEntry{}, false, err
	}
	var e AdviceEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return AdviceEntry{}, false, fmt.Errorf("decode advice %s: %w", key, err)
	}
	// Refresh mtime so age-based purging keeps entries still in use.
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return e, true, nil
}

// Save writes e under key, stamping SavedAt when unset.
func (c *AdviceCache) Save(_ context.Context, key string, e AdviceEntry) error {
	if c == nil {
		return ErrNoDir
	}
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode advice: %w", err)
	}
	return writeAtomic(c.path(key), b, fileMode(c.StrictPerms))
}
