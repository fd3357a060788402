// Package welcome is the splash shown at startup: a worked example solves
// itself line by line, then the banner appears and the home screen takes
// over.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

const (
	tickInterval = 150 * time.Millisecond
	// holdFrames is how long the finished splash stays up before moving on
	// by itself.
	holdFrames = 12
)

// example is a solved equation; left and right of "=" are aligned.
var example = []struct{ lhs, rhs, note string }{
	{"2x + 3", "7", ""},
	{"2x", "4", "subtract 3"},
	{"x", "2", "divide by 2"},
}

// bannerFrame is the first frame that shows the banner.
var bannerFrame = len(example)

type tickMsg time.Time

// WelcomeScreen shows the splash. next builds the screen that replaces it.
type WelcomeScreen struct {
	next  func() screen.Screen
	frame int
	done  bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates the splash. next is called once, when the splash ends.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.done {
			return w, nil
		}
		w.frame++
		if w.frame >= bannerFrame+holdFrames {
			return w, w.finish()
		}
		return w, tick()
	case tea.KeyPressMsg:
		return w, w.finish()
	}
	return w, nil
}

// finish hands over to the next screen. Later calls do nothing.
func (w *WelcomeScreen) finish() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	next := w.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (w *WelcomeScreen) View(width, height int) string {
	shown := min(w.frame+1, len(example))
	lhsWidth := 0
	for _, ex := range example {
		lhsWidth = max(lhsWidth, len(ex.lhs))
	}

	var lines []string
	for _, ex := range example[:shown] {
		eq := theme.StepMath.Render(strings.Repeat(" ", lhsWidth-len(ex.lhs)) + ex.lhs + " = " + ex.rhs)
		if ex.note != "" {
			eq += "   " + theme.StepNote.Render("("+ex.note+")")
		}
		lines = append(lines, eq)
	}
	// Keep the example from shifting as lines appear.
	for len(lines) < len(example) {
		lines = append(lines, "")
	}
	content := theme.Card.Render(strings.Join(lines, "\n"))

	if w.frame >= bannerFrame {
		content += "\n\n" + RenderBanner(width) + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Every answer, one step at a time.") +
			"\n\n" + theme.Hint.Render("press any key")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
