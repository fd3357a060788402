package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Solve", Score{Solved: 3, Attempted: 5}, 100)
	for _, want := range []string{"mathstep", "Solve", "✓ 3/5 solved"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q:\n%s", want, h)
		}
	}
}

func TestRenderHeader_NoAttempts(t *testing.T) {
	h := RenderHeader("Home", Score{}, 100)
	if strings.Contains(h, "✓") {
		t.Errorf("score shown before any attempt:\n%s", h)
	}
}

func TestRenderHeader_Compact(t *testing.T) {
	h := RenderHeader("History", Score{Solved: 1, Attempted: 1}, MinWidth)
	if !strings.Contains(h, "✓ 1/1") || strings.Contains(h, "solved") {
		t.Errorf("compact header should drop the label:\n%s", h)
	}
}

func TestRenderFooter(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "Esc", Description: "Back"}}, 80)
	if !strings.Contains(f, "Esc") || !strings.Contains(f, "Back") {
		t.Errorf("footer = %q", f)
	}
}

func TestRenderFooter_DropsOverflow(t *testing.T) {
	hints := []KeyHint{
		{Key: "Enter", Description: "Solve"},
		{Key: "Tab", Description: "Next example"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	f := RenderFooter(hints, 40)
	if !strings.Contains(f, "Enter") {
		t.Errorf("first hint missing:\n%s", f)
	}
	if strings.Contains(f, "Ctrl+C") {
		t.Errorf("overflowing hint should be dropped:\n%s", f)
	}
}

func TestRenderFrame_ClipsContent(t *testing.T) {
	header := RenderHeader("Solution", Score{}, 80)
	footer := RenderFooter(nil, 80)
	content := strings.Repeat("step\n", 50)

	frame := RenderFrame(header, content, footer, 80, 20)
	if got := lipgloss.Height(frame); got != 20 {
		t.Errorf("frame height = %d, want 20", got)
	}
}

func TestSizes(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) {
		t.Error("narrow terminal should be too small")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("minimum size should be accepted")
	}
	if !strings.Contains(RenderMinSizeMessage(40, 10), "Terminal too small") {
		t.Error("expected the minimum size message")
	}
}
