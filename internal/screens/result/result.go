package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/ui/layout"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

// ResultScreen shows a solved (or failed) problem with its numbered steps.
type ResultScreen struct {
	res    problem.Result
	offset int
	// lines rendered at the last View, used to clamp scrolling.
	total  int
	height int
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen for res.
func New(res problem.Result) *ResultScreen {
	return &ResultScreen{res: res}
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	if s.res.Solved() {
		return "Solution"
	}
	return "No Solution"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Back"},
		{Key: "m", Description: "Menu"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < s.maxOffset() {
			s.offset++
		}
	case "pgdown", "space":
		s.offset = min(s.offset+s.page(), s.maxOffset())
	case "pgup":
		s.offset = max(s.offset-s.page(), 0)
	case "home", "g":
		s.offset = 0
	case "enter", "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "m":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

func (s *ResultScreen) page() int {
	if s.height < 2 {
		return 1
	}
	return s.height - 1
}

func (s *ResultScreen) maxOffset() int {
	if s.total <= s.height {
		return 0
	}
	return s.total - s.height
}

func (s *ResultScreen) View(width, height int) string {
	lines := Render(s.res, width)
	s.total = len(lines)
	s.height = height
	if s.offset > s.maxOffset() {
		s.offset = s.maxOffset()
	}

	end := s.offset + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[s.offset:end], "\n")
}

// Render lays out res as display lines wrapped to width. It is shared with
// the history screen.
func Render(res problem.Result, width int) []string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	wrap := lipgloss.NewStyle().Width(inner)
	label := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", label.Render("Problem:"), theme.Body.Render(res.Problem))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Type:   "), theme.TypeBadge(res.Type, 0))
	if res.Normalized != "" && res.Normalized != res.Problem {
		fmt.Fprintf(&b, "%s %s\n", label.Render("Read as:"), theme.StepMath.Render(res.Normalized))
	}
	b.WriteString("\n")

	for i, st := range res.Steps {
		action := theme.StepAction
		if st.IsError() {
			action = theme.Incorrect
		}
		fmt.Fprintf(&b, "%s %s\n", label.Render(fmt.Sprintf("%2d.", i+1)), action.Render(st.Action))
		if st.Math != "" {
			b.WriteString(wrap.Render("    "+theme.StepMath.Render(st.Math)) + "\n")
		}
		if st.Explanation != "" {
			b.WriteString(wrap.Render("    "+theme.StepNote.Render(st.Explanation)) + "\n")
		}
	}

	b.WriteString("\n")
	if res.Solved() {
		fmt.Fprintf(&b, "%s %s\n", theme.Correct.Render("Answer:"), theme.Body.Bold(true).Render(res.SolutionString()))
	} else {
		msg := "Could not solve this problem."
		if last, ok := res.LastStep(); ok && last.IsError() {
			msg = last.Explanation
		}
		b.WriteString(wrap.Render(theme.Incorrect.Render("✗ ")+msg) + "\n")
	}

	lines := strings.Split(b.String(), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return lines
}
