// Package app wires fetching, signal extraction, scoring, advice, display and
// export into the geoanalyzer run.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/geoanalyzer/internal/advisor"
	"github.com/hyperifyio/geoanalyzer/internal/cache"
	"github.com/hyperifyio/geoanalyzer/internal/display"
	"github.com/hyperifyio/geoanalyzer/internal/extract"
	"github.com/hyperifyio/geoanalyzer/internal/fetch"
	"github.com/hyperifyio/geoanalyzer/internal/report"
	"github.com/hyperifyio/geoanalyzer/internal/robots"
	"github.com/hyperifyio/geoanalyzer/internal/score"
)

// ErrAnalysisFailed is returned by Run when at least one URL could not be
// analysed. The other URLs are still displayed and exported.
var ErrAnalysisFailed = errors.New("analysis failed")

const llmTimeout = 2 * time.Minute

// App runs analyses for a validated Config.
type App struct {
	cfg      Config
	fetcher  *fetch.Client
	advisor  *advisor.Advisor
	renderer *display.Renderer
	now      func() time.Time
}

// New builds an App. Cache maintenance (clear, age purge) happens here so a
// run always starts from a consistent cache.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, now: cfg.Now}
	if a.now == nil {
		a.now = time.Now
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	a.renderer = &display.Renderer{Out: out, Top: cfg.Top}

	httpClient := newHTTPClient(cfg.Timeout, cfg.Concurrency)
	a.fetcher = &fetch.Client{
		HTTPClient:        httpClient,
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.Timeout,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		MaxConcurrent:     cfg.Concurrency,
	}

	var adviceCache *cache.AdviceCache
	if cfg.CacheDir != "" {
		if err := a.prepareCache(); err != nil {
			return nil, err
		}
		a.fetcher.Cache = &cache.HTTPCache{Dir: filepath.Join(cfg.CacheDir, "http"), StrictPerms: cfg.CacheStrictPerms}
		adviceCache = &cache.AdviceCache{Dir: filepath.Join(cfg.CacheDir, "advice"), StrictPerms: cfg.CacheStrictPerms}
	}
	if cfg.Robots {
		// robots.txt bodies share the page cache; entries are keyed by URL.
		a.fetcher.Robots = &robots.Checker{HTTPClient: httpClient, Cache: a.fetcher.Cache, UserAgent: cfg.UserAgent}
	}

	if cfg.LLMModel != "" {
		oc := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			oc.BaseURL = cfg.LLMBaseURL
		}
		oc.HTTPClient = newHTTPClient(llmTimeout, cfg.Concurrency)
		a.advisor = &advisor.Advisor{
			Client:       openai.NewClientWithConfig(oc),
			Model:        cfg.LLMModel,
			Cache:        adviceCache,
			SystemPrompt: cfg.LLMSystemPrompt,
			MaxTokens:    cfg.LLMMaxTokens,
		}
		log.Debug().Str("model", cfg.LLMModel).Msg("llm advice enabled")
	}
	return a, nil
}

func (a *App) prepareCache() error {
	dir := a.cfg.CacheDir
	if a.cfg.CacheClear {
		if err := cache.ClearDir(dir); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		log.Info().Str("path", dir).Msg("cache cleared")
	}
	if a.cfg.CacheMaxAge > 0 {
		now := a.now()
		nHTTP, err := cache.PurgeHTTPByAge(filepath.Join(dir, "http"), a.cfg.CacheMaxAge, now)
		if err != nil {
			log.Warn().Err(err).Msg("http cache purge failed")
		}
		nAdv, err := cache.PurgeAdviceByAge(filepath.Join(dir, "advice"), a.cfg.CacheMaxAge, now)
		if err != nil {
			log.Warn().Err(err).Msg("advice cache purge failed")
		}
		log.Debug().Int("http", nHTTP).Int("advice", nAdv).Msg("cache purged")
	}
	return nil
}

// SetAdvisorClient replaces the chat client, keeping model and cache. Used
// to plug in non-OpenAI backends.
func (a *App) SetAdvisorClient(c advisor.Client) {
	if a.advisor != nil {
		a.advisor.Client = c
	}
}

// Analyze fetches rawURL and scores it. Only a fetch failure is an error;
// advice failures are logged and leave Advice empty.
func (a *App) Analyze(ctx context.Context, rawURL string) (report.Analysis, error) {
	start := time.Now()
	page, err := a.fetcher.Get(ctx, rawURL)
	if err != nil {
		return report.Analysis{}, err
	}
	now := a.now()
	opts := extract.Options{Years: extract.RecentYears(now, a.cfg.YearsBack, a.cfg.YearsAhead)}
	doc := extract.Parse(page.Body)
	// Links are judged against the URL the content was served from.
	signals := extract.Extract(doc, page.FinalURL, opts)
	result := score.Score(signals)

	an := report.New(page.URL, doc.Title(), page.FetchedAt, signals, result)
	an.Generator = Generator()
	log.Info().
		Str("url", page.URL).
		Str("score", report.FormatScore(result.FinalScore)).
		Str("grade", string(result.Grade)).
		Bool("cached", page.FromCache).
		Dur("elapsed", time.Since(start)).
		Msg("analysed")

	if a.advisor.Configured() {
		advice, err := a.advisor.Advise(ctx, advisor.Input{URL: an.URL, Title: an.Title, Result: result})
		if err != nil {
			log.Warn().Err(err).Str("url", an.URL).Msg("llm advice unavailable")
		} else {
			an.Advice = advice
		}
	}
	return an, nil
}

// Run analyses every configured URL, renders results in input order and
// exports the requested formats.
func (a *App) Run(ctx context.Context) error {
	outcomes := a.AnalyzeAll(ctx, a.cfg.URLs)
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			log.Error().Err(o.Err).Str("url", o.URL).Msg("analysis failed")
			if err := a.renderer.RenderFailure(o.URL, o.Err); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			continue
		}
		if err := a.renderer.Render(o.Analysis); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		a.export(o.Analysis)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d urls", ErrAnalysisFailed, failed, len(outcomes))
	}
	return nil
}

func (a *App) export(an report.Analysis) {
	for _, f := range a.cfg.Formats {
		path, err := report.WriteFile(a.cfg.OutDir, an, f)
		if err != nil {
			log.Warn().Err(err).Str("url", an.URL).Str("format", string(f)).Msg("export failed")
			continue
		}
		log.Info().Str("path", path).Msg("report written")
	}
}
