package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(&buf, "info", "text")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("solve", "type", "arithmetic")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %s", out)
	}
	if !strings.Contains(out, "msg=solve") || !strings.Contains(out, "type=arithmetic") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("solve", "steps", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "solve" || rec["steps"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_InvalidInput(t *testing.T) {
	if _, _, err := New(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetLevel_Reload(t *testing.T) {
	var buf bytes.Buffer
	logger, lv, err := New(&buf, "warn", "text")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("before")
	if err := SetLevel(lv, "DEBUG"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	logger.Info("after")

	if strings.Contains(buf.String(), "before") || !strings.Contains(buf.String(), "after") {
		t.Errorf("unexpected output: %s", buf.String())
	}
	if lv.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", lv.Level())
	}
}
