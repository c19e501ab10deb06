package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperifyio/geoanalyzer/internal/fetch"
	"github.com/hyperifyio/geoanalyzer/internal/report"
)

// Defaults shared by flags, file config and env layering. A field still
// holding its default counts as unset for the lower-precedence layers.
const (
	DefaultConcurrency = 4
	DefaultYearsBack   = 1
	DefaultYearsAhead  = 4
	DefaultOutDir      = "."
	DefaultTop         = 10
)

// Config holds runtime configuration for the application.
type Config struct {
	URLs []string

	// Fetch
	UserAgent    string
	Timeout      time.Duration
	MaxAttempts  int
	MaxBodyBytes int64
	Robots       bool

	// Batch
	Concurrency int

	// Recent-year window relative to the run date
	YearsBack  int
	YearsAhead int

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Export; no formats means display only
	Formats []report.Format
	OutDir  string

	// Display
	Top     int
	Verbose bool

	// LLM advice, enabled when LLMModel is set
	LLMBaseURL      string
	LLMModel        string
	LLMAPIKey       string
	LLMSystemPrompt string
	LLMMaxTokens    int

	// Output receives the terminal view. Nil means os.Stdout.
	Output io.Writer
	// Now overrides the clock for the year window and reports.
	Now func() time.Time
}

// DefaultConfig returns a Config carrying every default.
func DefaultConfig() Config {
	return Config{
		UserAgent:   fetch.DefaultUserAgent,
		Timeout:     fetch.DefaultTimeout,
		MaxAttempts: 1,
		Concurrency: DefaultConcurrency,
		YearsBack:   DefaultYearsBack,
		YearsAhead:  DefaultYearsAhead,
		OutDir:      DefaultOutDir,
		Top:         DefaultTop,
	}
}

// ValidateConfig checks required settings and normalizes URLs in place.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: missing")
	}
	if len(cfg.URLs) == 0 {
		return errors.New("config: at least one URL is required")
	}
	for i, raw := range cfg.URLs {
		u, err := fetch.NormalizeURL(raw)
		if err != nil {
			return fmt.Errorf("config: url %d: %v", i+1, err)
		}
		cfg.URLs[i] = u
	}
	if cfg.Timeout < 0 || cfg.MaxAttempts < 0 || cfg.MaxBodyBytes < 0 || cfg.CacheMaxAge < 0 || cfg.LLMMaxTokens < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Concurrency < 1 {
		return errors.New("config: concurrency must be at least 1")
	}
	if cfg.YearsBack < 0 || cfg.YearsAhead < 0 {
		return errors.New("config: years.back and years.ahead must not be negative")
	}
	if cfg.LLMBaseURL != "" && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required when llm.base is set")
	}
	return nil
}

// SplitList splits a comma-separated flag or env value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
