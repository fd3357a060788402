package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the search paths at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "${ANTHROPIC_API_KEY}", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cm, err := NewManager("")
	require.NoError(t, err)
	cfg := cm.Get()

	assert.Empty(t, cm.File())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Server.SolveTimeout)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Zero(t, cfg.History.Retention)
	assert.Equal(t, time.Hour, cfg.History.PruneInterval)
	assert.Equal(t, 2.0, cfg.LLM.Retry.Multiplier)
	assert.Equal(t, "sk-ant", cfg.LLM.Anthropic.APIKey)
	assert.True(t, cfg.LLM.HasKey())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
engine:
  case_insensitive_functions: true
server:
  addr: 127.0.0.1:9000
history:
  retention: 720h
llm:
  provider: gemini
  gemini:
    model: gemini-pro
    api_key: literal-key
`), 0o644))

	t.Setenv("MATHSTEP_LOG_FORMAT", "json")
	t.Setenv("MATHSTEP_OPENAI_API_KEY", "sk-openai")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Engine.CaseInsensitiveFunctions)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 720*time.Hour, cfg.History.Retention)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-pro", cfg.LLM.Gemini.Model)
	assert.Equal(t, "literal-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "sk-openai", cfg.LLM.OpenAI.APIKey)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_SearchesWorkingDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mathstep.yaml"), []byte("server:\n  addr: \":8088\"\n"), 0o644))

	cm, err := NewManager("")
	require.NoError(t, err)
	assert.Equal(t, ":8088", cm.Get().Server.Addr)
	assert.NotEmpty(t, cm.File())
}

func TestLoad_Invalid(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"bad addr", "server:\n  addr: not-an-address\n"},
		{"bad provider", "llm:\n  provider: carrier-pigeon\n"},
		{"bad retry", "llm:\n  retry:\n    max_attempts: 0\n"},
		{"negative retention", "history:\n  retention: -1h\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("MATHSTEP_TEST_KEY", "secret123")

	assert.Equal(t, "secret123", ResolveEnvVars("${MATHSTEP_TEST_KEY}"))
	assert.Equal(t, "", ResolveEnvVars("${DEFINITELY_NOT_SET_12345}"))
	assert.Equal(t, "literal-value", ResolveEnvVars("literal-value"))
	assert.Equal(t, "", ResolveEnvVars(""))
}

func TestWriteDefault(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yaml")

	require.NoError(t, WriteDefault(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# mathstep configuration"))
	assert.Contains(t, string(data), "api_key: ${OPENAI_API_KEY}")
	assert.Contains(t, string(data), "solve_timeout: 30s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)

	assert.Error(t, WriteDefault(path), "must not overwrite")
}

func TestManager_Reload(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "reload.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))

	cm, err := NewManager(path)
	require.NoError(t, err)

	var got *Config
	cm.OnChange(func(c *Config) { got = c })
	var reloadErr error
	cm.OnError(func(err error) { reloadErr = err })

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	require.NoError(t, cm.v.ReadInConfig())
	cm.reload()
	require.NotNil(t, got)
	assert.Equal(t, "debug", got.Log.Level)
	assert.Equal(t, "debug", cm.Get().Log.Level)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))
	require.NoError(t, cm.v.ReadInConfig())
	cm.reload()
	assert.Error(t, reloadErr)
	assert.Equal(t, "debug", cm.Get().Log.Level, "invalid reload keeps previous config")
}
