package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HTTPEntry is the metadata kept beside a cached page body. The validators
// let the fetcher revalidate with a conditional GET.
type HTTPEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"contentType"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"lastModified,omitempty"`
	SavedAt      time.Time `json:"savedAt"`
}

// HTTPCache keeps fetched pages on disk as <digest>.meta.json plus
// <digest>.body, where digest is sha256 of the URL.
type HTTPCache struct {
	Dir string
	// StrictPerms writes the directory as 0700 and files as 0600.
	StrictPerms bool
}

const (
	metaSuffix = ".meta.json"
	bodySuffix = ".body"
)

func (c *HTTPCache) paths(url string) (meta string, body string) {
	base := filepath.Join(c.Dir, digest(url))
	return base + metaSuffix, base + bodySuffix
}

func (c *HTTPCache) ready() error {
	if c == nil {
		return ErrNoDir
	}
	return ensureDir(c.Dir, c.StrictPerms)
}

// LoadMeta returns the stored metadata for url. A missing entry yields an
// error satisfying errors.Is(err, fs.ErrNotExist).
func (c *HTTPCache) LoadMeta(_ context.Context, url string) (*HTTPEntry, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	metaPath, _ := c.paths(url)
	b, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var e HTTPEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(metaPath), err)
	}
	return &e, nil
}

// LoadBody returns the stored body for url.
func (c *HTTPCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	_, bodyPath := c.paths(url)
	return os.ReadFile(bodyPath)
}

// Save stores body and its validators. The body is written before the
// metadata so a reader never sees metadata without a body.
func (c *HTTPCache) Save(_ context.Context, url string, contentType string, etag string, lastModified string, body []byte) error {
	if err := c.ready(); err != nil {
		return err
	}
	metaPath, bodyPath := c.paths(url)
	mode := fileMode(c.StrictPerms)
	if err := writeAtomic(bodyPath, body, mode); err != nil {
		return err
	}
	meta, err := json.Marshal(HTTPEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	return writeAtomic(metaPath, meta, mode)
}
