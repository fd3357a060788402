// Package layout draws the frame shared by every screen: a header bar with
// the session score, the active screen, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/ui/theme"
)

// Smallest terminal the frame can be drawn in. Long solutions scroll, so
// the height floor only has to fit the frame plus a few step lines.
const (
	MinWidth  = 64
	MinHeight = 16

	// Below this width the header drops its labels.
	CompactWidthThreshold = 90
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Score is the running tally shown in the header.
type Score struct {
	Solved    int
	Attempted int
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small\n\nmathstep needs at least %d x %d\ncurrently %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

// RenderHeader renders the header bar: product name, screen title and the
// score for this session. Nothing is shown on the right until a problem
// has been attempted.
func RenderHeader(title string, score Score, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  mathstep")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := renderScore(score, width < CompactWidthThreshold)

	inner := max(width-4, 0)
	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	return bar(width).Render(left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right)
}

func renderScore(s Score, compact bool) string {
	if s.Attempted == 0 {
		return ""
	}
	tally := fmt.Sprintf("✓ %d/%d", s.Solved, s.Attempted)
	if !compact {
		tally += " solved"
	}
	color := theme.Success
	if s.Solved < s.Attempted {
		color = theme.Accent
	}
	return lipgloss.NewStyle().Foreground(color).Render(tally)
}

// RenderFooter renders key hints left to right. Hints that do not fit the
// width are dropped from the end.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	const sep = "   "
	content := " "
	for _, h := range hints {
		part := sep + key.Render(h.Key) + " " + desc.Render(h.Description)
		if width > 0 && lipgloss.Width(content+part) > width-4 {
			break
		}
		content += part
	}
	return bar(width).Render(content)
}

// RenderFrame stacks header, content and footer, clipping the content to
// the rows left between the two bars.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	lines := strings.Split(content, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	body := lipgloss.NewStyle().
		Width(width).
		Height(rows).
		Render(strings.Join(lines, "\n"))

	return header + "\n" + body + "\n" + footer
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}
