package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/hyperifyio/geoanalyzer/internal/score"
)

// MarkdownWriter emits a GitHub-flavoured Markdown report.
type MarkdownWriter struct{}

var categoryLabels = map[score.Category]string{
	score.Technical: "Technical Foundation",
	score.Structure: "Content Structure",
	score.Authority: "Authority Signals",
}

// CategoryLabel is the human title of a score category.
func CategoryLabel(c score.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (MarkdownWriter) Write(out io.Writer, a Analysis) error {
	r := a.Result
	md := markdown.NewMarkdown(out)
	md.H1("GEO Analyzer Report")
	md.PlainText("")

	rows := [][]string{
		{"URL", escapeCell(a.URL)},
		{"Score", FormatScore(r.FinalScore) + "/100"},
		{"Grade", string(r.Grade)},
		{"Priority", string(r.Priority)},
	}
	if a.Title != "" {
		rows = append(rows, []string{"Title", escapeCell(a.Title)})
	}
	if !a.FetchedAt.IsZero() {
		rows = append(rows, []string{"Fetched", a.FetchedAt.UTC().Format("2006-01-02 15:04:05 MST")})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	switch r.Priority {
	case score.PriorityUrgent:
		md.Cautionf("%s priority: the page scores %s/100.", r.Priority, FormatScore(r.FinalScore))
	case score.PriorityHigh:
		md.Warningf("%s priority: the page scores %s/100.", r.Priority, FormatScore(r.FinalScore))
	case score.PriorityMedium:
		md.Importantf("%s priority: the page scores %s/100.", r.Priority, FormatScore(r.FinalScore))
	default:
		md.Tip("LOW priority: the page is in good shape.")
	}
	md.PlainText("")

	md.H2("Breakdown")
	md.PlainText("")
	var breakdown [][]string
	for _, c := range score.Categories {
		breakdown = append(breakdown, []string{
			CategoryLabel(c),
			strconv.Itoa(r.SubScore(c)) + "/100",
			strconv.Itoa(score.Weights[c]) + "%",
		})
	}
	md.Table(markdown.TableSet{Header: []string{"Category", "Score", "Weight"}, Rows: breakdown})
	md.PlainText("")

	md.H2("Actionable Fixes")
	md.PlainText("")
	if len(r.Issues) == 0 {
		md.PlainText("No issues found.")
	} else {
		items := make([]string, 0, len(r.Issues))
		for _, is := range r.Issues {
			items = append(items, fmt.Sprintf("%s **[%s]**", is.Description, is.Effort))
		}
		md.BulletList(items...)
	}
	md.PlainText("")

	if strings.TrimSpace(a.Advice) != "" {
		md.H2("Advice")
		md.PlainText("")
		md.PlainText(strings.TrimSpace(a.Advice))
		md.PlainText("")
	}

	if a.Generator != "" {
		md.HorizontalRule()
		md.PlainTextf("Generated by %s", a.Generator)
	}
	return md.Build()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
