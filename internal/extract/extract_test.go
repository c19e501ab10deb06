package extract

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testYears = YearWindow{From: 2024, To: 2029}

func fullMarksHTML() string {
	var links strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&links, `<a href="https://source%d.example.org/ref">ref %d</a>`, i, i)
	}
	return `<!doctype html>
<html>
  <head>
    <title>Widget Pro Review</title>
    <script type="application/ld+json">{"@type":"Article"}</script>
  </head>
  <body>
    <article>
      <h1>Widget Pro</h1>
      <h2>Specs</h2><h2>Pricing</h2><h3>Battery</h3><h3>Display</h3><h2>FAQ</h2>
      <p>Updated in 2025. By Jane Doe, PhD</p>
      <table><tr><td>Weight</td><td>1kg</td></tr></table>
      <ul><li>Fast</li><li>Light</li></ul>
      ` + links.String() + `
      <img src="/img/trust-badge.png" alt="Trusted">
    </article>
  </body>
</html>`
}

func TestExtract_FullMarksDocument(t *testing.T) {
	got := FromHTML([]byte(fullMarksHTML()), "https://widgets.example.com/pro", Options{Years: testYears})
	want := Signals{
		HasStructuredData:             true,
		HasSemanticSectioning:         true,
		HasGoodHeadingStructure:       true,
		HasRecentDateMention:          true,
		HasReasonableParagraphLength:  true,
		HasTabularOrDefinitionContent: true,
		HasListContent:                true,
		MentionsFAQ:                   true,
		MentionsAuthorCredential:      true,
		ExternalLinkCount:             10,
		HasTrustBadgeImage:            true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("signals mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_EmptyAndNonHTMLBodies(t *testing.T) {
	inputs := map[string][]byte{
		"empty":  nil,
		"blank":  []byte(""),
		"binary": {0x89, 'P', 'N', 'G', 0x00, 0x01, 0xff},
		"json":   []byte(`{"hello": "world", "faq": "by 2025"}`),
		"shell":  []byte("<html><head></head><body>   </body></html>"),
	}
	for name, body := range inputs {
		t.Run(name, func(t *testing.T) {
			got := FromHTML(body, "https://example.com/", Options{Years: testYears})
			if diff := cmp.Diff(Signals{}, got); diff != "" {
				t.Fatalf("expected empty signals (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_TextOnlyBodyKeepsTextSignals(t *testing.T) {
	body := []byte(`<!doctype html><html><head></head><body>FAQ. By Jane Doe, PhD. Updated 2025-01-02.</body></html>`)
	got := FromHTML(body, "https://example.com/", Options{Years: testYears})
	want := Signals{
		HasRecentDateMention:         true,
		HasReasonableParagraphLength: true,
		MentionsFAQ:                  true,
		MentionsAuthorCredential:     true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("signals mismatch (-want +got):\n%s", diff)
	}
	if Parse(body).Empty() {
		t.Fatal("expected a text-only body not to count as empty")
	}
}

func TestExtract_MalformedMarkupDegrades(t *testing.T) {
	got := FromHTML([]byte("<html><body><div><p>unclosed <b>tags"), "https://example.com/", Options{Years: testYears})
	// Markup without long paragraphs passes the paragraph rule and nothing else.
	want := Signals{HasReasonableParagraphLength: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("signals mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_NilDocument(t *testing.T) {
	got := Extract(nil, "https://example.com/", Options{Years: testYears})
	if diff := cmp.Diff(Signals{}, got); diff != "" {
		t.Fatalf("unexpected signals for nil document: %+v", got)
	}
}

func TestExtract_StructuredDataRequiresLDJSONType(t *testing.T) {
	cases := []struct {
		html string
		want bool
	}{
		{`<script type="application/ld+json">{}</script>`, true},
		{`<script type=" Application/LD+JSON ">{}</script>`, true},
		{`<script type="application/json">{}</script>`, false},
		{`<script>var x = {"@context":"https://schema.org"}</script>`, false},
	}
	for _, c := range cases {
		got := FromHTML([]byte(c.html), "", Options{}).HasStructuredData
		if got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.html, c.want, got)
		}
	}
}

func TestExtract_HeadingStructureNeedsH1AndMoreThanThree(t *testing.T) {
	cases := []struct {
		html string
		want bool
	}{
		{`<h1>a</h1><h2>b</h2><h2>c</h2><h3>d</h3>`, true},
		{`<h1>a</h1><h2>b</h2><h2>c</h2>`, false},
		{`<h2>a</h2><h2>b</h2><h3>c</h3><h4>d</h4><h5>e</h5>`, false},
		{`<h1>a</h1><h6>b</h6><h6>c</h6><h6>d</h6>`, true},
	}
	for _, c := range cases {
		got := FromHTML([]byte(c.html), "", Options{}).HasGoodHeadingStructure
		if got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.html, c.want, got)
		}
	}
}

func TestExtract_RecentDateMention(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Published 2019-03-04", true},
		{"Copyright 2026", true},
		{"Copyright 2023", false},
		{"Copyright 2030", false},
		{"no dates here", false},
	}
	for _, c := range cases {
		got := FromHTML([]byte("<p>"+c.text+"</p>"), "", Options{Years: testYears}).HasRecentDateMention
		if got != c.want {
			t.Fatalf("%q: expected %v, got %v", c.text, c.want, got)
		}
	}
}

func TestExtract_RecentDateIgnoresScriptText(t *testing.T) {
	body := `<script>var built = "2025";</script><p>evergreen</p>`
	if FromHTML([]byte(body), "", Options{Years: testYears}).HasRecentDateMention {
		t.Fatalf("expected script contents to be excluded from plain text")
	}
}

func TestExtract_EmptyYearWindowMatchesOnlyISODates(t *testing.T) {
	opts := Options{Years: YearWindow{From: 2030, To: 2020}}
	if FromHTML([]byte("<p>2025</p>"), "", opts).HasRecentDateMention {
		t.Fatalf("expected inverted window to match nothing")
	}
	if !FromHTML([]byte("<p>2025-01-02</p>"), "", opts).HasRecentDateMention {
		t.Fatalf("expected ISO date to match regardless of window")
	}
}

func TestRecentYears(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	got := RecentYears(now, 1, 4)
	if got != (YearWindow{From: 2024, To: 2029}) {
		t.Fatalf("expected 2024-2029, got %+v", got)
	}
	if !got.Contains(2024) || !got.Contains(2029) || got.Contains(2030) {
		t.Fatalf("window bounds are not inclusive: %+v", got)
	}
	if w := RecentYears(now, -3, -1); w != (YearWindow{From: 2025, To: 2025}) {
		t.Fatalf("expected negative offsets clamped, got %+v", w)
	}
	if d := DefaultOptions(now); d.Years != got {
		t.Fatalf("expected default options to use 1 back / 4 ahead, got %+v", d.Years)
	}
}

func TestExtract_LongParagraphs(t *testing.T) {
	long := strings.Repeat("word ", 81)
	short := strings.Repeat("word ", 80)
	build := func(longCount int) string {
		var b strings.Builder
		for i := 0; i < longCount; i++ {
			b.WriteString("<p>" + long + "</p>")
		}
		b.WriteString("<p>" + short + "</p>")
		return b.String()
	}
	if !FromHTML([]byte(build(2)), "", Options{}).HasReasonableParagraphLength {
		t.Fatalf("expected two long paragraphs to be reasonable")
	}
	if FromHTML([]byte(build(3)), "", Options{}).HasReasonableParagraphLength {
		t.Fatalf("expected three long paragraphs to fail")
	}
}

func TestExtract_ParagraphWordsIncludeNestedText(t *testing.T) {
	half := strings.Repeat("word ", 41)
	p := "<p>" + half + "<em>" + half + "</em></p>"
	body := p + p + p
	if FromHTML([]byte(body), "", Options{}).HasReasonableParagraphLength {
		t.Fatalf("expected nested inline text to count toward paragraph length")
	}
}

func TestExtract_TablesAndLists(t *testing.T) {
	s := FromHTML([]byte("<dl><dt>a</dt><dd>b</dd></dl><ol><li>x</li></ol>"), "", Options{})
	if !s.HasTabularOrDefinitionContent || !s.HasListContent {
		t.Fatalf("expected dl and ol to count, got %+v", s)
	}
}

func TestExtract_TextMentionsAreCaseInsensitive(t *testing.T) {
	s := FromHTML([]byte("<p>Read our Faq. Written by the AUTHOR.</p>"), "", Options{})
	if !s.MentionsFAQ || !s.MentionsAuthorCredential {
		t.Fatalf("expected case-insensitive matches, got %+v", s)
	}
	s = FromHTML([]byte("<p>Ｆａｑ</p>"), "", Options{})
	if !s.MentionsFAQ {
		t.Fatalf("expected full-width FAQ to normalise")
	}
	s = FromHTML([]byte("<p>Shop local</p>"), "", Options{})
	if s.MentionsAuthorCredential {
		t.Fatalf("did not expect credential match for %q", "Shop local")
	}
}

func TestExtract_ExternalLinkCount(t *testing.T) {
	body := `
<a href="https://other.org/a">1</a>
<a href="http://OTHER.org/b">2</a>
<a href="//cdn.example.net/c">3</a>
<a href="https://example.com/same">same host</a>
<a href="https://Example.com/x">same host mixed case</a>
<a href="/relative">relative</a>
<a href="#top">fragment</a>
<a href="mailto:me@example.org">mail</a>
<a href="https://example.com:8443/port">different port</a>
<a>no href</a>
<a href="http://[::1">broken</a>`
	got := FromHTML([]byte(body), "https://example.com/page", Options{}).ExternalLinkCount
	if got != 4 {
		t.Fatalf("expected 4 external links, got %d", got)
	}
}

func TestExtract_TrustBadgeImage(t *testing.T) {
	cases := []struct {
		html string
		want bool
	}{
		{`<img src="/static/SSL-Cert.svg">`, true},
		{`<picture><source src="/badges/award.webp"></picture>`, true},
		{`<img src="/images/logo.png">`, false},
		{`<img data-src="/trust.png">`, false},
		{`<script src="/js/trust.js"></script>`, false},
	}
	for _, c := range cases {
		got := FromHTML([]byte(c.html), "", Options{}).HasTrustBadgeImage
		if got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.html, c.want, got)
		}
	}
}

func TestDocument_TitleAndText(t *testing.T) {
	doc := Parse([]byte(`<html><head><title> Hello </title><style>p{}</style></head><body><p>One</p><p>Two</p><!-- c --></body></html>`))
	if doc.Title() != "Hello" {
		t.Fatalf("expected title %q, got %q", "Hello", doc.Title())
	}
	if !strings.Contains(doc.Text(), "OneTwo") {
		t.Fatalf("expected concatenated paragraph text, got %q", doc.Text())
	}
	if strings.Contains(doc.Text(), "p{}") || strings.Contains(doc.Text(), " c ") {
		t.Fatalf("expected style and comments excluded, got %q", doc.Text())
	}
	if doc.Count("p") != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", doc.Count("p"))
	}
}

func TestSignalNames_OnePerField(t *testing.T) {
	names := SignalNames()
	if len(names) != 11 {
		t.Fatalf("expected 11 signal names, got %d", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate signal name %q", n)
		}
		seen[n] = true
	}
}

func TestSignalExtractor(t *testing.T) {
	var e Extractor = SignalExtractor{Options: Options{Years: testYears}}
	s := e.Extract([]byte("<main><p>2027</p></main>"), "https://example.com/")
	if !s.HasSemanticSectioning || !s.HasRecentDateMention {
		t.Fatalf("unexpected signals: %+v", s)
	}
}
