package stats

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/store"
	"github.com/abhisek/mathstep/internal/ui/components"
	"github.com/abhisek/mathstep/internal/ui/layout"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

type statsLoadedMsg struct {
	Stats store.SolveStats
	Err   error
}

// StatsScreen shows solve rates per problem type.
type StatsScreen struct {
	eventRepo store.EventRepo
	stats     store.SolveStats
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)
var _ screen.Resumer = (*StatsScreen)(nil)

// New creates a StatsScreen.
func New(eventRepo store.EventRepo) *StatsScreen {
	return &StatsScreen{eventRepo: eventRepo}
}

func (s *StatsScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		st, err := repo.SolveStats(context.Background())
		return statsLoadedMsg{Stats: st, Err: err}
	}
}

func (s *StatsScreen) Resume() tea.Cmd {
	return s.Init()
}

func (s *StatsScreen) Title() string {
	return "Stats"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.stats = msg.Stats
	case tea.KeyMsg:
		if msg.String() == "r" {
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.errMsg != "":
		return center.Foreground(theme.Error).Render("\n\nError: " + s.errMsg)
	case !s.loaded:
		return center.Foreground(theme.TextDim).Render("\n\n  Loading stats...")
	case s.stats.Total == 0:
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\n  Nothing to report yet.")
	}

	barWidth := min(width-8, 70)

	var lines []string
	lines = append(lines, theme.Title.Width(barWidth).Render(
		fmt.Sprintf("%d solved of %d attempted", s.stats.Solved, s.stats.Total)))
	lines = append(lines, theme.Subtitle.Width(barWidth).Render(
		fmt.Sprintf("average solve time %.1f ms", s.stats.AvgLatencyMs)))
	lines = append(lines, "")
	lines = append(lines, components.NewProgressBar(padLabel("overall"), s.stats.SolvedRatio(), true, barWidth).View())
	lines = append(lines, "")

	for _, ts := range s.stats.ByType {
		ratio := 0.0
		if ts.Total > 0 {
			ratio = float64(ts.Solved) / float64(ts.Total)
		}
		label := padLabel(string(ts.Type))
		lines = append(lines, components.NewProgressBar(label, ratio, true, barWidth).View())
		lines = append(lines, theme.Hint.Render(fmt.Sprintf("%16s %d/%d", "", ts.Solved, ts.Total)))
	}

	content := strings.Join(lines, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func padLabel(s string) string {
	return fmt.Sprintf("%-15s", s)
}
