package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "mathstep",
	Short: "Step-by-step math problem solver",
	Long: `mathstep classifies a math problem, rewrites it into plain notation and
solves it, explaining every step. Run without a command for the terminal UI.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./mathstep.yaml, then the user config dir)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHSTEP_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-history", false, "Do not record solves in the database")

	rootCmd.Flags().Bool("no-splash", false, "Skip the splash screen")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func runApp(cmd *cobra.Command) error {
	// Log records would tear the alternate screen, so the TUI runs quiet.
	e, err := newEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(app.Options{
		Solver:       e.pipeline(cmd.Context(), false),
		EventRepo:    e.repo(),
		SolveTimeout: e.cfg.Server.SolveTimeout,
		SkipSplash:   noSplash,
	})
}
