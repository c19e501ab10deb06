// Package report holds the serializable record of one page analysis and
// writes it out as PDF, Markdown or JSON.
package report

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/geoanalyzer/internal/extract"
	"github.com/hyperifyio/geoanalyzer/internal/score"
)

// Analysis is everything known about one analysed page.
type Analysis struct {
	URL       string          `json:"url"`
	Host      string          `json:"host"`
	Title     string          `json:"title,omitempty"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Signals   extract.Signals `json:"signals"`
	Result    score.Result    `json:"result"`
	// Advice is the optional model-written action plan.
	Advice    string `json:"advice,omitempty"`
	Generator string `json:"generator,omitempty"`
}

// New assembles an Analysis, deriving Host from pageURL.
func New(pageURL string, title string, fetchedAt time.Time, signals extract.Signals, result score.Result) Analysis {
	return Analysis{
		URL:       pageURL,
		Host:      HostOf(pageURL),
		Title:     strings.TrimSpace(title),
		FetchedAt: fetchedAt,
		Signals:   signals,
		Result:    result,
	}
}

// HostOf returns the host[:port] of rawURL, or "" when it has none.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// FormatScore renders a final score with exactly one decimal.
func FormatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
