package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/geoanalyzer/internal/report"
)

// Outcome is the result of analysing one URL.
type Outcome struct {
	URL      string
	Analysis report.Analysis
	Err      error
}

// AnalyzeAll analyses urls with at most cfg.Concurrency in flight. Outcomes
// keep input order. A failed URL never cancels its siblings; a cancelled ctx
// marks the URLs not yet started as failed.
func (a *App) AnalyzeAll(ctx context.Context, urls []string) []Outcome {
	out := make([]Outcome, len(urls))
	limit := a.cfg.Concurrency
	if limit < 1 {
		limit = 1
	}
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() error {
			out[i].URL = u
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Analysis, out[i].Err = a.Analyze(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	log.Debug().Int("urls", len(urls)).Int("concurrency", limit).Dur("elapsed", time.Since(start)).Msg("batch complete")
	return out
}
