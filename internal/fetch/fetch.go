package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/geoanalyzer/internal/cache"
)

// DefaultUserAgent identifies the analyzer to the sites it fetches.
const DefaultUserAgent = "GEOAnalyzerBot/1.0 (+https://github.com/hyperifyio/geoanalyzer)"

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 20 * time.Second

// ErrFetchFailed wraps every failure to obtain a page: bad scheme, transport
// error, timeout, non-2xx status or a robots.txt denial.
var ErrFetchFailed = errors.New("fetch failed")

// ErrDisallowed marks a fetch refused by the site's robots.txt.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// ErrEmptyURL is returned by NormalizeURL for blank input.
var ErrEmptyURL = errors.New("empty url")

// Page is the raw material of one analysis.
type Page struct {
	// URL is the normalized request URL.
	URL string
	// FinalURL is the URL after redirects.
	FinalURL    string
	Body        []byte
	ContentType string
	StatusCode  int
	FetchedAt   time.Time
	FromCache   bool
}

// RobotsGate decides whether a URL may be fetched by userAgent.
type RobotsGate interface {
	Allowed(ctx context.Context, rawURL string, userAgent string) (bool, error)
}

// Client wraps http.Client with a per-request timeout, a redirect cap and an
// optional conditional-GET cache. By default a page is fetched once, without
// retries.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Zero means 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request. Zero means DefaultTimeout.
	PerRequestTimeout time.Duration
	// MaxBodyBytes caps how much of a body is read. Zero means no cap.
	MaxBodyBytes int64
	// Optional on-disk cache for bodies plus validators.
	Cache *cache.HTTPCache
	// If true, skip conditional headers but still refresh the cache.
	BypassCache bool
	// Optional robots.txt gate consulted before each fetch.
	Robots RobotsGate

	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests per client. Zero means unlimited.
	MaxConcurrent int

	limiter     chan struct{}
	limiterOnce sync.Once
}

// NormalizeURL trims raw and prefixes https:// when it does not already
// carry an http or https scheme.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyURL
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	return u.String(), nil
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c *Client) timeout() time.Duration {
	if c.PerRequestTimeout > 0 {
		return c.PerRequestTimeout
	}
	return DefaultTimeout
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Copy so our redirect policy does not leak into the caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.timeout(), CheckRedirect: c.checkRedirectFunc()}
}

// Get fetches rawURL. Any failure is reported wrapped in ErrFetchFailed.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	if c.Robots != nil {
		ok, err := c.Robots.Allowed(ctx, rawURL, c.userAgent())
		if err != nil {
			log.Debug().Err(err).Str("url", rawURL).Msg("robots.txt unavailable; assuming allowed")
		} else if !ok {
			return Page{}, fmt.Errorf("%w: %w", ErrFetchFailed, ErrDisallowed)
		}
	}

	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			return c.finish(ctx, resp)
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return Page{}, fmt.Errorf("%w: %w", ErrFetchFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return Page{}, fmt.Errorf("%w: %w", ErrFetchFailed, lastErr)
}

// finish serves 304s from cache, stores fresh 200s and decodes the body.
func (c *Client) finish(ctx context.Context, r response) (Page, error) {
	page := r.Page
	if page.StatusCode == http.StatusNotModified {
		if c.Cache == nil {
			return Page{}, fmt.Errorf("%w: not modified without cache", ErrFetchFailed)
		}
		body, err := c.Cache.LoadBody(ctx, page.URL)
		if err != nil {
			return Page{}, fmt.Errorf("%w: load cached body: %w", ErrFetchFailed, err)
		}
		if meta, err := c.Cache.LoadMeta(ctx, page.URL); err == nil && meta != nil && page.ContentType == "" {
			page.ContentType = meta.ContentType
		}
		page.Body = body
		page.FromCache = true
	} else if c.Cache != nil && page.StatusCode == http.StatusOK {
		if err := c.Cache.Save(ctx, page.URL, page.ContentType, r.etag, r.lastModified, page.Body); err != nil {
			log.Warn().Err(err).Str("url", page.URL).Msg("http cache save failed")
		}
	}
	page.Body = decodeUTF8(page.Body, page.ContentType)
	return page, nil
}

type response struct {
	Page
	etag         string
	lastModified string
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, etag string, lastMod string) (response, error) {
	c.acquire()
	defer c.release()

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.String())
	}
	req.Header.Set("User-Agent", c.userAgent())
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	start := time.Now()
	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()
	log.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("fetched")

	out := response{
		Page: Page{
			URL:         rawURL,
			FinalURL:    resp.Request.URL.String(),
			ContentType: resp.Header.Get("Content-Type"),
			StatusCode:  resp.StatusCode,
			FetchedAt:   time.Now().UTC(),
		},
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.StatusCode == http.StatusNotModified {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{Code: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if c.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, c.MaxBodyBytes)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	out.Body = b
	return out, nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// isTransient treats timeouts and 5xx responses as worth another attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500 && se.Code <= 599
}

// decodeUTF8 converts body to UTF-8 using the declared or sniffed charset.
// Undecodable input is returned unchanged.
func decodeUTF8(body []byte, contentType string) []byte {
	if len(body) == 0 {
		return body
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return out
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
