package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/store"
	"github.com/abhisek/mathstep/internal/symbolic"
)

// resetFlags restores every flag to its default; cobra keeps values
// between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args against an isolated config dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func sampleResult() problem.Result {
	v := symbolic.Number(14)
	return problem.Result{
		Type:       problem.TypeArithmetic,
		Problem:    "2 + 3 × 4",
		Normalized: "2 + 3 * 4",
		Solution:   &v,
		Steps: []problem.Step{
			{Action: "Evaluate Sub-expression", Math: "3 * 4 = 12", Explanation: "Computed 3 * 4 to yield 12.", Result: "12"},
		},
	}
}

func TestPrintResult_Text(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, printResult(&b, sampleResult(), "text"))
	out := b.String()
	assert.Contains(t, out, "Problem:  2 + 3 × 4")
	assert.Contains(t, out, "Read as:  2 + 3 * 4")
	assert.Contains(t, out, " 1. Evaluate Sub-expression")
	assert.Contains(t, out, "Answer:   14")
}

func TestPrintResult_Unsolved(t *testing.T) {
	var b bytes.Buffer
	res := problem.Result{Type: problem.TypeAlgebra, Problem: "x^2+1=0"}
	require.NoError(t, printResult(&b, res, "text"))
	assert.Contains(t, b.String(), "No solution.")
	assert.NotContains(t, b.String(), "Read as:")
}

func TestPrintResult_JSON(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, printResult(&b, sampleResult(), "json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, "arithmetic", got["type"])
	assert.Equal(t, float64(14), got["solution"])
}

func TestPrintResult_YAML(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, printResult(&b, sampleResult(), "yaml"))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, "arithmetic", got["type"])
	assert.Equal(t, 14, got["solution"])
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "****wxyz", mask("sk-abcdwxyz"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "∫ x", truncate("∫ x^2 dx", 3))
	assert.Equal(t, "short", truncate("short", 10))
}

func TestSolveCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := execute(t, "solve", "--db", db, "-o", "text", "2 + 3 * 4")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer:   14")

	out, err = execute(t, "solve", "--db", db, "-o", "json", "2 + 3 * 4")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, float64(14), res["solution"])

	out, err = execute(t, "history", "--db", db, "-n", "10", "--type", "arithmetic")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "2 + 3 * 4"), out)
}

func TestSolveCommand_Unsolved(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	out, err := execute(t, "solve", "--db", db, "-o", "text", "2++3")
	assert.ErrorIs(t, err, errUnsolved)
	assert.Contains(t, out, problem.ActionParseError)
	assert.Contains(t, out, "No solution.")
}

func TestSolveCommand_BadFormat(t *testing.T) {
	_, err := execute(t, "solve", "--no-history", "-o", "xml", "1+1")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	_, err := execute(t, "stats", "--no-history")
	assert.ErrorIs(t, err, errNoHistory)
}

func TestHistoryPrune(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := execute(t, "solve", "--db", db, "-o", "text", "1 + 1")
	require.NoError(t, err)

	out, err := execute(t, "history", "prune", "--db", db, "--older-than", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 0 solves")

	out, err = execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "1 + 1")

	_, err = execute(t, "history", "prune", "--db", db)
	assert.ErrorContains(t, err, "nothing to prune")
}

func TestLLMCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	repo := st.EventRepo()
	ctx := context.Background()
	require.NoError(t, repo.AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "ocr",
		InputTokens: 1000, OutputTokens: 20, Success: true,
		ResponseBody: `{"found":true,"text":"2+2"}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "ocr", ErrorMessage: "rate limited",
	}))
	require.NoError(t, st.Close())

	out, err := execute(t, "llm", "list", "--db", db, "--failed")
	require.NoError(t, err)
	assert.Contains(t, out, "✗")
	assert.NotContains(t, out, "✓")

	out, err = execute(t, "llm", "view", "--db", db, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Tokens:   1000 in / 20 out")
	assert.Contains(t, out, `{"found":true,"text":"2+2"}`)
	assert.Contains(t, out, "(not captured)")

	out, err = execute(t, "llm", "view", "--db", db, "-o", "json", "2")
	require.NoError(t, err)
	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &ev))
	assert.Equal(t, "rate limited", ev["ErrorMessage"])

	_, err = execute(t, "llm", "view", "--db", db, "9")
	assert.ErrorIs(t, err, store.ErrNotFound)

	out, err = execute(t, "llm", "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "gpt-4o-mini")
	assert.NotContains(t, out, "partial")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mathstep.yaml")
	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "solve_timeout")

	_, err = execute(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from "+path)
}
