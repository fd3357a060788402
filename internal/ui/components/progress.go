package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/ui/theme"
)

// ProgressBar draws a ratio as a filled bar. The fill color moves from
// red through amber to green as the ratio rises.
type ProgressBar struct {
	Label       string
	Percent     float64 // 0..1, clamped when drawn
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

func fillColor(p float64) color.Color {
	switch {
	case p >= 0.75:
		return theme.Success
	case p >= 0.4:
		return theme.Accent
	default:
		return theme.Error
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	pct := min(max(p.Percent, 0), 1)

	var b strings.Builder
	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  ")
	}

	suffix := ""
	if p.ShowPercent {
		suffix = fmt.Sprintf(" %4d%%", int(pct*100))
	}

	barWidth := max(p.Width-lipgloss.Width(b.String())-len(suffix), 4)
	filled := int(float64(barWidth) * pct)

	b.WriteString(lipgloss.NewStyle().Foreground(fillColor(pct)).Render(strings.Repeat("█", filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled)))
	if suffix != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix))
	}
	return b.String()
}
