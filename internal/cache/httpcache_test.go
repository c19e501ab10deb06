package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPCache_SaveLoad(t *testing.T) {
	t.Parallel()
	c := &HTTPCache{Dir: t.TempDir()}
	ctx := context.Background()
	u := "https://example.com/page"
	if err := c.Save(ctx, u, "text/html", `"v1"`, "Mon, 02 Jan 2006 15:04:05 GMT", []byte("<p>hi</p>")); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := c.LoadMeta(ctx, u)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.URL != u || meta.ETag != `"v1"` || meta.ContentType != "text/html" || meta.SavedAt.IsZero() {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	body, err := c.LoadBody(ctx, u)
	if err != nil || string(body) != "<p>hi</p>" {
		t.Fatalf("load body: %q %v", body, err)
	}
}

func TestHTTPCache_MissIsNotExist(t *testing.T) {
	t.Parallel()
	c := &HTTPCache{Dir: t.TempDir()}
	if _, err := c.LoadMeta(context.Background(), "https://example.com/none"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}

func TestHTTPCache_NoDir(t *testing.T) {
	t.Parallel()
	var c *HTTPCache
	if _, err := c.LoadBody(context.Background(), "https://example.com"); !errors.Is(err, ErrNoDir) {
		t.Fatalf("expected ErrNoDir, got %v", err)
	}
	if err := (&HTTPCache{}).Save(context.Background(), "u", "", "", "", nil); !errors.Is(err, ErrNoDir) {
		t.Fatalf("expected ErrNoDir, got %v", err)
	}
}

func TestHTTPCache_StrictPerms(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "http")
	c := &HTTPCache{Dir: dir, StrictPerms: true}
	u := "https://example.com/x"
	if err := c.Save(context.Background(), u, "text/html", "etag", "", []byte("hello")); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o700 {
		t.Fatalf("dir mode = %o, want 0700", got)
	}
	metaPath, bodyPath := c.paths(u)
	for _, p := range []string{metaPath, bodyPath} {
		fi, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if got := fi.Mode().Perm(); got != 0o600 {
			t.Fatalf("%s mode = %o, want 0600", filepath.Base(p), got)
		}
	}
}

func TestPurgeHTTPByAge(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := &HTTPCache{Dir: dir}
	ctx := context.Background()
	for _, u := range []string{"https://a.example/1", "https://a.example/2"} {
		if err := c.Save(ctx, u, "text/html", "", "", []byte(u)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	removed, err := PurgeHTTPByAge(dir, time.Hour, time.Now())
	if err != nil || removed != 0 {
		t.Fatalf("fresh entries purged: %d %v", removed, err)
	}
	removed, err = PurgeHTTPByAge(dir, time.Hour, time.Now().Add(2*time.Hour))
	if err != nil || removed != 2 {
		t.Fatalf("expected 2 removed, got %d %v", removed, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %d files", len(entries))
	}
}

func TestPurge_MissingDirAndZeroAge(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "nope")
	if n, err := PurgeHTTPByAge(missing, time.Hour, time.Now()); err != nil || n != 0 {
		t.Fatalf("missing dir: %d %v", n, err)
	}
	if n, err := PurgeAdviceByAge(missing, 0, time.Now()); err != nil || n != 0 {
		t.Fatalf("zero age: %d %v", n, err)
	}
}

func TestClearDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.body"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected recreated empty dir, got %d entries, err %v", len(entries), err)
	}
	if err := ClearDir("  "); !errors.Is(err, ErrNoDir) {
		t.Fatalf("expected ErrNoDir for blank dir, got %v", err)
	}
}
