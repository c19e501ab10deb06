package display

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hyperifyio/geoanalyzer/internal/score"
)

// Theme holds the palette of the terminal view.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color

	Urgent lipgloss.Color
	High   lipgloss.Color
	Medium lipgloss.Color
	Low    lipgloss.Color
}

// DefaultTheme colours priorities red, orange, yellow and green from URGENT to LOW.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"),
		Muted:   lipgloss.Color("#6C7086"),
		Border:  lipgloss.Color("#45475A"),
		Urgent:  lipgloss.Color("#E74C3C"), // red
		High:    lipgloss.Color("#E67E22"), // orange
		Medium:  lipgloss.Color("#F1C40F"), // yellow
		Low:     lipgloss.Color("#27AE60"), // green
	}
}

// PriorityColor returns the badge colour for p.
func (t *Theme) PriorityColor(p score.Priority) lipgloss.Color {
	switch p {
	case score.PriorityUrgent:
		return t.Urgent
	case score.PriorityHigh:
		return t.High
	case score.PriorityMedium:
		return t.Medium
	default:
		return t.Low
	}
}

type styles struct {
	score   lipgloss.Style
	grade   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	badge   func(score.Priority) lipgloss.Style
	effort  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, t *Theme) styles {
	return styles{
		score: r.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 3),
		grade: r.NewStyle().Bold(true),
		heading: r.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			MarginTop(1),
		label: r.NewStyle().Width(22),
		muted: r.NewStyle().Foreground(t.Muted),
		badge: func(p score.Priority) lipgloss.Style {
			return r.NewStyle().Bold(true).Foreground(t.PriorityColor(p))
		},
		effort: r.NewStyle().Bold(true),
	}
}
