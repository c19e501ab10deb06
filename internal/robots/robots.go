// Package robots answers whether the analyzer may fetch a URL according to
// the target site's robots.txt.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/geoanalyzer/internal/cache"
)

// Source tells where a Rules value came from.
type Source int

const (
	SourceNetwork Source = iota
	SourceMemory
	SourceCache304
)

// DefaultExpiry is how long parsed rules are reused for a host.
const DefaultExpiry = 30 * time.Minute

const maxRobotsBytes = 512 * 1024

// Checker fetches and memoizes robots.txt per origin. It satisfies
// fetch.RobotsGate. The zero value is ready to use.
type Checker struct {
	HTTPClient *http.Client
	// Cache optionally persists robots.txt bodies for conditional revalidation.
	Cache       *cache.HTTPCache
	UserAgent   string
	EntryExpiry time.Duration

	mu  sync.Mutex
	mem map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	rules  Rules
	expiry time.Time
}

// Allowed reports whether rawURL may be fetched by userAgent. The error is
// non-nil only when rawURL itself is unusable.
func (c *Checker) Allowed(ctx context.Context, rawURL string, userAgent string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	if u.Host == "" {
		return false, fmt.Errorf("url %q has no host", rawURL)
	}
	rules, _, err := c.Rules(ctx, robotsURL(u))
	if err != nil {
		return false, err
	}
	return rules.IsAllowed(userAgent, u.RequestURI()), nil
}

// Rules returns the parsed robots.txt at robotsTxt. A missing file (4xx other
// than 401/403) allows everything. Server errors, auth walls and transport
// failures deny everything until the entry expires.
func (c *Checker) Rules(ctx context.Context, robotsTxt string) (Rules, Source, error) {
	u, err := url.Parse(robotsTxt)
	if err != nil {
		return Rules{}, SourceNetwork, fmt.Errorf("parse url: %w", err)
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return Rules{}, SourceNetwork, fmt.Errorf("unsupported url scheme: %q", robotsTxt)
	}
	if r, ok := c.lookup(robotsTxt); ok {
		return r, SourceMemory, nil
	}
	rules, src := c.fetch(ctx, robotsTxt)
	c.store(robotsTxt, rules)
	return rules, src, nil
}

func (c *Checker) fetch(ctx context.Context, robotsTxt string) (Rules, Source) {
	var etag, lastMod string
	if c.Cache != nil {
		if meta, err := c.Cache.LoadMeta(ctx, robotsTxt); err == nil {
			etag, lastMod = meta.ETag, meta.LastModified
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsTxt, nil)
	if err != nil {
		return Rules{DenyAll: true}, SourceNetwork
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", robotsTxt).Msg("robots.txt unreachable; denying host")
		return Rules{DenyAll: true}, SourceNetwork
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && c.Cache != nil:
		body, err := c.Cache.LoadBody(ctx, robotsTxt)
		if err == nil {
			return Parse(string(body)), SourceCache304
		}
		log.Debug().Err(err).Str("url", robotsTxt).Msg("cached robots.txt missing")
		return Rules{DenyAll: true}, SourceCache304
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
		if err != nil {
			return Rules{DenyAll: true}, SourceNetwork
		}
		if c.Cache != nil {
			if err := c.Cache.Save(ctx, robotsTxt, "text/plain", resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), data); err != nil {
				log.Debug().Err(err).Msg("robots cache save failed")
			}
		}
		return Parse(string(data)), SourceNetwork
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Rules{DenyAll: true}, SourceNetwork
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		return Rules{}, SourceNetwork
	default:
		return Rules{DenyAll: true}, SourceNetwork
	}
}

func (c *Checker) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Checker) lookup(key string) (Rules, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.mem[key]
	if !ok || !c.clock().Before(ent.expiry) {
		return Rules{}, false
	}
	return ent.rules, true
}

func (c *Checker) store(key string, rules Rules) {
	exp := c.EntryExpiry
	if exp <= 0 {
		exp = DefaultExpiry
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mem == nil {
		c.mem = make(map[string]memEntry)
	}
	c.mem[key] = memEntry{rules: rules, expiry: c.clock().Add(exp)}
}

func robotsURL(u *url.URL) string {
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()
}
