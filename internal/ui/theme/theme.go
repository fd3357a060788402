package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/problem"
)

// Color palette, tuned for dark terminals
var (
	Primary   = lipgloss.Color("#60A5FA") // Sky
	Secondary = lipgloss.Color("#2DD4BF") // Teal
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#4ADE80") // Green
	Error     = lipgloss.Color("#F87171") // Red
	Text      = lipgloss.Color("#E2E8F0") // Off-white
	TextDim   = lipgloss.Color("#8494A9") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// Verdicts
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Solution steps
var (
	StepAction = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StepMath = lipgloss.NewStyle().
			Foreground(Accent)

	StepNote = lipgloss.NewStyle().
			Foreground(TextDim)
)

var typeColors = map[problem.Type]color.Color{
	problem.TypeArithmetic:      lipgloss.Color("#A78BFA"),
	problem.TypeAlgebra:         lipgloss.Color("#60A5FA"),
	problem.TypeDifferentiation: lipgloss.Color("#F472B6"),
	problem.TypeIntegration:     lipgloss.Color("#34D399"),
	problem.TypeLimit:           lipgloss.Color("#FB923C"),
}

// TypeBadge renders a problem type in its own color, padded to width.
func TypeBadge(t problem.Type, width int) string {
	c, ok := typeColors[t]
	if !ok {
		c = TextDim
	}
	return lipgloss.NewStyle().Foreground(c).Width(width).Render(string(t))
}
