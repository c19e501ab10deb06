// Package display renders an analysis for the terminal.
package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hyperifyio/geoanalyzer/internal/report"
	"github.com/hyperifyio/geoanalyzer/internal/score"
)

// DefaultTop is how many issues the terminal view lists.
const DefaultTop = 10

// Renderer writes analyses to Out. Colour is used only when Out is a
// terminal that supports it.
type Renderer struct {
	Out   io.Writer
	Theme *Theme
	// Top caps listed issues. Zero means DefaultTop, negative lists all.
	Top int
}

func (r *Renderer) top() int {
	if r.Top == 0 {
		return DefaultTop
	}
	return r.Top
}

// Render writes one analysis.
func (r *Renderer) Render(a report.Analysis) error {
	theme := r.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	st := newStyles(lipgloss.NewRenderer(r.Out), theme)
	_, err := io.WriteString(r.Out, view(st, a, r.top())+"\n")
	return err
}

// RenderFailure writes a one-line notice for a URL that could not be analysed.
func (r *Renderer) RenderFailure(url string, cause error) error {
	theme := r.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	st := newStyles(lipgloss.NewRenderer(r.Out), theme)
	line := st.badge(score.PriorityUrgent).Render("FAILED") + " " + url + st.muted.Render(": "+cause.Error())
	_, err := io.WriteString(r.Out, line+"\n")
	return err
}

func view(st styles, a report.Analysis, top int) string {
	res := a.Result
	var b strings.Builder

	head := a.URL
	if a.Title != "" {
		head = a.Title + "  " + st.muted.Render(a.URL)
	}
	b.WriteString(head + "\n")
	b.WriteString(st.score.Render(report.FormatScore(res.FinalScore)+st.muted.Render("/100")) + "\n")
	b.WriteString(st.grade.Render("Grade "+string(res.Grade)) + "   " + st.badge(res.Priority).Render(string(res.Priority)+" PRIORITY") + "\n")

	b.WriteString(st.heading.Render("Breakdown") + "\n")
	for _, c := range score.Categories {
		fmt.Fprintf(&b, "  %s%s  %s\n",
			st.label.Render(report.CategoryLabel(c)),
			strconv.Itoa(res.SubScore(c))+"/100",
			st.muted.Render(strconv.Itoa(score.Weights[c])+"% weight"))
	}

	b.WriteString(st.heading.Render("Actionable Fixes") + "\n")
	if len(res.Issues) == 0 {
		b.WriteString("  " + st.muted.Render("No issues found.") + "\n")
	}
	shown := res.Issues
	if top >= 0 && len(shown) > top {
		shown = shown[:top]
	}
	for _, is := range shown {
		fmt.Fprintf(&b, "  • %s %s\n", is.Description, st.effort.Render("["+string(is.Effort)+"]"))
	}
	if rest := len(res.Issues) - len(shown); rest > 0 {
		b.WriteString("  " + st.muted.Render(fmt.Sprintf("… and %d more in the exported report", rest)) + "\n")
	}

	if adv := strings.TrimSpace(a.Advice); adv != "" {
		b.WriteString(st.heading.Render("Advice") + "\n")
		for _, line := range strings.Split(adv, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
