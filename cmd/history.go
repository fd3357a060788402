package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent solves",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		typeName, _ := cmd.Flags().GetString("type")
		solvedOnly, _ := cmd.Flags().GetBool("solved")

		q := store.SolveQuery{QueryOpts: store.QueryOpts{Limit: limit}, SolvedOnly: solvedOnly}
		if typeName != "" {
			t, err := problem.ParseType(typeName)
			if err != nil {
				return err
			}
			q.Type = t
		}

		e, err := newEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()
		repo, err := e.requireRepo()
		if err != nil {
			return err
		}

		events, err := repo.QuerySolves(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No solves recorded yet.")
			return nil
		}

		fmt.Fprintf(w, "%-5s  %-19s  %-15s  %-5s  %-36s  %s\n",
			"ID", "Timestamp", "Type", "Src", "Problem", "Solution")
		fmt.Fprintln(w, strings.Repeat("─", 100))
		for _, ev := range events {
			sol := ev.Solution
			if !ev.Solved {
				sol = "✗"
			}
			fmt.Fprintf(w, "%-5d  %-19s  %-15s  %-5s  %-36s  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Type,
				ev.Source,
				truncate(ev.Problem, 36),
				truncate(sol, 24),
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the steps of a recorded solve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		e, err := newEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()
		repo, err := e.requireRepo()
		if err != nil {
			return err
		}

		ev, err := repo.GetSolve(cmd.Context(), id)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if format == "text" {
			fmt.Fprintf(w, "ID:       %d (request %s)\n", ev.ID, ev.RequestID)
			fmt.Fprintf(w, "Time:     %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Latency:  %dms\n", ev.LatencyMs)
		}
		return printResult(w, store.EventResult(*ev), format)
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete recorded events older than a given age",
	Long: `Deletes solve and LLM request events older than --older-than, or
history.retention from the config when the flag is not given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()
		if e.st == nil {
			return errNoHistory
		}

		age := e.cfg.History.Retention
		if cmd.Flags().Changed("older-than") {
			age, _ = cmd.Flags().GetDuration("older-than")
		}
		if age <= 0 {
			return fmt.Errorf("nothing to prune: set --older-than or history.retention")
		}

		res, err := e.st.Prune(cmd.Context(), time.Now().Add(-age))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d solves and %d LLM requests older than %s.\n",
			res.Solves, res.LLMRequests, age)
		return nil
	},
}

func init() {
	historyPruneCmd.Flags().Duration("older-than", 0, "Age cutoff, e.g. 720h (default history.retention)")
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Number of solves to show")
	historyCmd.Flags().StringP("type", "t", "", "Filter by problem type (arithmetic, differentiation, integration, algebra, limit)")
	historyCmd.Flags().Bool("solved", false, "Only show solved problems")

	addOutputFlag(historyShowCmd)
	historyCmd.AddCommand(historyShowCmd)
}
