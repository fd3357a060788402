package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mathstep/internal/config"
	"github.com/abhisek/mathstep/internal/logging"
	"github.com/abhisek/mathstep/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the solver over HTTP",
	Long: `Starts the HTTP API:

  POST /api/solve    {"problem": "..."}
  POST /api/upload   multipart image field "image"
  GET  /api/history  recent solves
  GET  /healthz
  GET  /metrics      Prometheus metrics

Editing the config file while the server runs updates the log level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		sc := e.cfg.Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			sc.Addr = addr
		}

		srv := server.New(server.Config{
			Addr:            sc.Addr,
			SolveTimeout:    sc.SolveTimeout,
			ShutdownTimeout: sc.ShutdownTimeout,
			Debug:           e.cfg.Log.Level == "debug",
		}, e.pipeline(cmd.Context(), true),
			server.WithHistory(e.repo()),
			server.WithLogger(e.logger),
		)

		e.mgr.OnChange(func(c *config.Config) {
			if err := logging.SetLevel(e.level, c.Log.Level); err != nil {
				e.logger.Warn("ignoring log level from reloaded config", "error", err)
				return
			}
			e.logger.Info("config reloaded", "log_level", c.Log.Level)
		})
		e.mgr.OnError(func(err error) {
			e.logger.Warn("config reload failed", "error", err)
		})
		e.mgr.WatchConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			e.logger.Info("listening", "addr", sc.Addr, "history", e.st != nil)
			return srv.ListenAndServe()
		})
		g.Go(func() error {
			pruneLoop(gctx, e)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			e.logger.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
		return g.Wait()
	},
}

// pruneLoop applies history.retention at startup and then every
// history.prune_interval until ctx is done.
func pruneLoop(ctx context.Context, e *env) {
	h := e.cfg.History
	if e.st == nil || h.Retention <= 0 {
		return
	}
	t := time.NewTicker(h.PruneInterval)
	defer t.Stop()
	for {
		res, err := e.st.Prune(ctx, time.Now().Add(-h.Retention))
		switch {
		case err != nil && ctx.Err() == nil:
			e.logger.Warn("history prune failed", "error", err)
		case res.Solves+res.LLMRequests > 0:
			e.logger.Info("history pruned", "solves", res.Solves, "llm_requests", res.LLMRequests)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
