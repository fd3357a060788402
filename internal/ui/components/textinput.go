package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/ui/theme"
)

// mathRunes are the non-alphanumeric characters a problem may contain,
// covering plain notation and the LaTeX subset the normalizer accepts.
const mathRunes = " +-*/^=()[]{}.,_\\'|!<>"

// MathOnly accepts letters, digits and math punctuation.
func MathOnly(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return strings.ContainsRune(mathRunes, r) || strings.ContainsRune("∫√πθ∞→−×÷·", r)
}

// TextInput is a single-line input with an optional rune filter, a
// verdict marker after submission, and shell-style recall of earlier
// entries with up and down.
type TextInput struct {
	Model textinput.Model
	Allow func(rune) bool // nil accepts everything

	submitted, valid bool

	recall []string // oldest first
	pos    int      // index into recall; len(recall) is the live line
	draft  string   // live line saved while browsing recall
}

// NewTextInput creates a focused input. limit caps the length in runes.
func NewTextInput(placeholder string, allow func(rune) bool, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = max(limit, 0)
	ti.Focus()
	return TextInput{Model: ti, Allow: allow}
}

func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. Printable keys rejected by Allow are dropped.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	k, isKey := msg.(tea.KeyPressMsg)
	if isKey {
		switch k.String() {
		case "up":
			t.browse(-1)
			return t, nil
		case "down":
			t.browse(1)
			return t, nil
		}
		if t.Allow != nil && strings.ContainsFunc(k.Text, func(r rune) bool { return !t.Allow(r) }) {
			return t, nil
		}
		t.submitted = false
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// Remember adds s to the recall list, skipping immediate repeats, and
// resets browsing to the live line.
func (t *TextInput) Remember(s string) {
	if s != "" && (len(t.recall) == 0 || t.recall[len(t.recall)-1] != s) {
		t.recall = append(t.recall, s)
	}
	t.pos = len(t.recall)
}

func (t *TextInput) browse(dir int) {
	next := t.pos + dir
	if next < 0 || next > len(t.recall) {
		return
	}
	if t.pos == len(t.recall) {
		t.draft = t.Model.Value()
	}
	t.pos = next
	if next == len(t.recall) {
		t.Model.SetValue(t.draft)
	} else {
		t.Model.SetValue(t.recall[next])
	}
	t.Model.CursorEnd()
	t.submitted = false
}

func (t TextInput) View() string {
	view := t.Model.View()
	if !t.submitted {
		return view
	}
	if t.valid {
		return view + " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	}
	return view + " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
}

func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
	t.submitted = false
}

// Submit shows a verdict marker until the next edit.
func (t *TextInput) Submit(valid bool) {
	t.submitted = true
	t.valid = valid
}
