package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/config"
	"github.com/abhisek/mathstep/internal/llm"
	"github.com/abhisek/mathstep/internal/logging"
	"github.com/abhisek/mathstep/internal/ocr"
	"github.com/abhisek/mathstep/internal/solver"
	"github.com/abhisek/mathstep/internal/store"
	"github.com/abhisek/mathstep/internal/symbolic"
)

var errNoProvider = errors.New("text detection needs an LLM provider: set llm.provider and its API key in the config, or export ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or OPENROUTER_API_KEY")

var errNoHistory = errors.New("history is disabled (--no-history)")

// env is what every command needs: config, logger and, unless
// --no-history is given, the event store.
type env struct {
	mgr    *config.Manager
	cfg    *config.Config
	logger *slog.Logger
	level  *slog.LevelVar
	st     *store.Store
}

// newEnv loads config and opens the store. A nil logOut discards logs.
func newEnv(cmd *cobra.Command, logOut io.Writer) (*env, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if logOut == nil {
		logOut = io.Discard
	}
	logger, lv, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	e := &env{mgr: mgr, cfg: cfg, logger: logger, level: lv}

	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		return e, nil
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.st = st
	logger.Debug("store opened", "path", dbPath)
	return e, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file, then MATHSTEP_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func (e *env) Close() error {
	if e.st == nil {
		return nil
	}
	return e.st.Close()
}

// repo returns the event repository, or nil when history is disabled.
func (e *env) repo() store.EventRepo {
	if e.st == nil {
		return nil
	}
	return e.st.EventRepo()
}

// requireRepo is repo for commands that only read history.
func (e *env) requireRepo() (store.EventRepo, error) {
	if e.st == nil {
		return nil, errNoHistory
	}
	return e.st.EventRepo(), nil
}

// pipeline wires the engine, the history sink and, when asked for and
// configured, LLM text detection.
func (e *env) pipeline(ctx context.Context, withDetector bool) *solver.Pipeline {
	opts := []solver.Option{solver.WithLogger(e.logger)}
	if repo := e.repo(); repo != nil {
		opts = append(opts, solver.WithSink(store.SolveSink(repo)))
	}
	if withDetector {
		det, err := e.detector(ctx)
		if err != nil {
			e.logger.Warn("text detection unavailable", "error", err)
		} else {
			e.logger.Info("text detection enabled", "detector", det.Name())
			opts = append(opts, solver.WithDetector(det))
		}
	}

	engine := symbolic.New(e.cfg.Engine)
	return solver.NewPipeline(solver.NewDefaultDispatcher(engine), opts...)
}

// detector builds the OCR detector from the configured provider, falling
// back to whichever provider key is present in the environment.
func (e *env) detector(ctx context.Context) (*ocr.LLMDetector, error) {
	cfg := e.cfg.LLM
	if !cfg.HasKey() {
		found, ok := llm.DiscoverConfig()
		if !ok {
			return nil, errNoProvider
		}
		found.Retry = cfg.Retry
		cfg = found
	}

	provider, err := llm.NewProvider(ctx, cfg, e.repo(), e.logger)
	if err != nil {
		return nil, err
	}
	return ocr.NewLLMDetector(provider, ocr.DefaultDetectorConfig()), nil
}
