package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClearDir empties dir and recreates it.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrNoDir
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeHTTPByAge removes page entries whose SavedAt is older than maxAge.
// Unreadable metadata is skipped. A missing dir purges nothing.
func PurgeHTTPByAge(dir string, maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	removed := 0
	err := walkFiles(dir, func(path string, _ fs.DirEntry) {
		if !strings.HasSuffix(path, metaSuffix) {
			return
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return
		}
		var e HTTPEntry
		if json.Unmarshal(b, &e) != nil || now.Sub(e.SavedAt) <= maxAge {
			return
		}
		_ = os.Remove(path)
		_ = os.Remove(strings.TrimSuffix(path, metaSuffix) + bodySuffix)
		removed++
	})
	return removed, err
}

// PurgeAdviceByAge removes advice entries last used more than maxAge ago.
func PurgeAdviceByAge(dir string, maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	removed := 0
	err := walkFiles(dir, func(path string, d fs.DirEntry) {
		if strings.HasSuffix(path, metaSuffix) || !strings.HasSuffix(path, ".json") {
			return
		}
		info, err := d.Info()
		if err != nil || now.Sub(info.ModTime()) <= maxAge {
			return
		}
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

func walkFiles(dir string, fn func(path string, d fs.DirEntry)) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			fn(path, d)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
