package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Signals holds exactly one value per content signal derived from a page.
// JSON names double as the canonical signal names.
type Signals struct {
	HasStructuredData             bool `json:"hasStructuredData"`
	HasSemanticSectioning         bool `json:"hasSemanticSectioning"`
	HasGoodHeadingStructure       bool `json:"hasGoodHeadingStructure"`
	HasRecentDateMention          bool `json:"hasRecentDateMention"`
	HasReasonableParagraphLength  bool `json:"hasReasonableParagraphLength"`
	HasTabularOrDefinitionContent bool `json:"hasTabularOrDefinitionContent"`
	HasListContent                bool `json:"hasListContent"`
	MentionsFAQ                   bool `json:"mentionsFaq"`
	MentionsAuthorCredential      bool `json:"mentionsAuthorCredential"`
	ExternalLinkCount             int  `json:"externalLinkCount"`
	HasTrustBadgeImage            bool `json:"hasTrustBadgeImage"`
}

// Signal names in rule evaluation order.
const (
	SignalStructuredData     = "hasStructuredData"
	SignalSemanticSectioning = "hasSemanticSectioning"
	SignalHeadingStructure   = "hasGoodHeadingStructure"
	SignalRecentDate         = "hasRecentDateMention"
	SignalParagraphLength    = "hasReasonableParagraphLength"
	SignalTabularContent     = "hasTabularOrDefinitionContent"
	SignalListContent        = "hasListContent"
	SignalFAQ                = "mentionsFaq"
	SignalAuthorCredential   = "mentionsAuthorCredential"
	SignalExternalLinkCount  = "externalLinkCount"
	SignalTrustBadge         = "hasTrustBadgeImage"
)

// SignalNames lists every signal name once, in rule evaluation order.
func SignalNames() []string {
	return []string{
		SignalStructuredData,
		SignalSemanticSectioning,
		SignalHeadingStructure,
		SignalRecentDate,
		SignalParagraphLength,
		SignalTabularContent,
		SignalListContent,
		SignalFAQ,
		SignalAuthorCredential,
		SignalExternalLinkCount,
		SignalTrustBadge,
	}
}

const (
	longParagraphWords = 80
	maxLongParagraphs  = 3
	minHeadingCount    = 3
	maxYearWindow      = 50
	structuredDataType = "application/ld+json"
)

var (
	semanticTags   = []string{"article", "section", "main"}
	headingTags    = []string{"h1", "h2", "h3", "h4", "h5", "h6"}
	imageLikeTags  = []string{"img", "image", "source", "picture", "input", "amp-img"}
	credentialHits = []string{"by ", "author", "phd", "engineer"}

	isoDateRe    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	trustBadgeRe = regexp.MustCompile(`(?i)badge|cert|trust`)
)

// YearWindow is an inclusive range of calendar years counted as "recent".
type YearWindow struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to" json:"to"`
}

// RecentYears returns the window [year(now)-back, year(now)+ahead].
// Negative offsets are treated as zero.
func RecentYears(now time.Time, back, ahead int) YearWindow {
	if back < 0 {
		back = 0
	}
	if ahead < 0 {
		ahead = 0
	}
	y := now.Year()
	return YearWindow{From: y - back, To: y + ahead}
}

// Contains reports whether year falls inside the window.
func (w YearWindow) Contains(year int) bool {
	return year >= w.From && year <= w.To
}

// pattern compiles the window into a substring alternation. An empty or
// inverted window matches nothing.
func (w YearWindow) pattern() *regexp.Regexp {
	if w.To < w.From {
		return nil
	}
	to := w.To
	if to-w.From >= maxYearWindow {
		to = w.From + maxYearWindow - 1
	}
	parts := make([]string, 0, to-w.From+1)
	for y := w.From; y <= to; y++ {
		if y < 1000 || y > 9999 {
			continue
		}
		parts = append(parts, strconv.Itoa(y))
	}
	if len(parts) == 0 {
		return nil
	}
	return regexp.MustCompile(strings.Join(parts, "|"))
}

// Options tune the extractor.
type Options struct {
	Years YearWindow
}

// DefaultOptions uses a window of one year back and four ahead of now.
func DefaultOptions(now time.Time) Options {
	return Options{Years: RecentYears(now, 1, 4)}
}

// FromHTML parses body and extracts its signals.
func FromHTML(body []byte, pageURL string, opts Options) Signals {
	return Extract(Parse(body), pageURL, opts)
}

// Extract computes the signal set for doc. pageURL is the resolved request
// URL used to tell external links from same-host ones. An empty document
// yields the zero Signals.
func Extract(doc *Document, pageURL string, opts Options) Signals {
	var s Signals
	if doc.Empty() {
		return s
	}
	text := doc.Text()
	// Casers are stateful; one per call keeps Extract safe for concurrent use.
	folded := cases.Fold().String(norm.NFKC.String(text))

	s.HasStructuredData = doc.Find(isStructuredDataScript) != nil
	s.HasSemanticSectioning = doc.Has(semanticTags...)
	s.HasGoodHeadingStructure = doc.Has("h1") && doc.Count(headingTags...) > minHeadingCount
	s.HasRecentDateMention = mentionsRecentDate(text, opts.Years)
	s.HasReasonableParagraphLength = countLongParagraphs(doc) < maxLongParagraphs
	s.HasTabularOrDefinitionContent = doc.Has("table", "dl")
	s.HasListContent = doc.Has("ul", "ol")
	s.MentionsFAQ = strings.Contains(folded, "faq")
	s.MentionsAuthorCredential = containsAny(folded, credentialHits)
	s.ExternalLinkCount = countExternalLinks(doc, pageURL)
	s.HasTrustBadgeImage = doc.Find(isTrustBadge) != nil
	return s
}

func isStructuredDataScript(n *html.Node) bool {
	if !strings.EqualFold(n.Data, "script") {
		return false
	}
	t, ok := Attr(n, "type")
	return ok && strings.EqualFold(strings.TrimSpace(t), structuredDataType)
}

func isTrustBadge(n *html.Node) bool {
	if !matchTags(imageLikeTags)(n) {
		return false
	}
	src, ok := Attr(n, "src")
	return ok && trustBadgeRe.MatchString(src)
}

func mentionsRecentDate(text string, years YearWindow) bool {
	if isoDateRe.MatchString(text) {
		return true
	}
	re := years.pattern()
	return re != nil && re.MatchString(text)
}

func countLongParagraphs(doc *Document) int {
	n := 0
	doc.Each(matchTags([]string{"p"}), func(p *html.Node) {
		if len(strings.Fields(nodeText(p))) > longParagraphWords {
			n++
		}
	})
	return n
}

// countExternalLinks counts anchors whose href names a host other than the
// page's. Hrefs are not resolved against the page, so relative links carry
// no host and are left out.
func countExternalLinks(doc *Document, pageURL string) int {
	pageHost := ""
	if u, err := url.Parse(strings.TrimSpace(pageURL)); err == nil {
		pageHost = strings.ToLower(u.Host)
	}
	n := 0
	doc.Each(matchTags([]string{"a"}), func(a *html.Node) {
		href, ok := Attr(a, "href")
		if !ok {
			return
		}
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || u.Host == "" {
			return
		}
		if strings.ToLower(u.Host) != pageHost {
			n++
		}
	})
	return n
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
