package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show solve rates per problem type",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()
		repo, err := e.requireRepo()
		if err != nil {
			return err
		}

		st, err := repo.SolveStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		w := cmd.OutOrStdout()
		if st.Total == 0 {
			fmt.Fprintln(w, "No solves recorded yet.")
			return nil
		}

		fmt.Fprintf(w, "%-16s  %8s  %8s  %7s\n", "Type", "Attempts", "Solved", "Rate")
		fmt.Fprintln(w, strings.Repeat("─", 46))
		for _, ts := range st.ByType {
			rate := 0.0
			if ts.Total > 0 {
				rate = float64(ts.Solved) / float64(ts.Total)
			}
			fmt.Fprintf(w, "%-16s  %8d  %8d  %6.1f%%\n", ts.Type, ts.Total, ts.Solved, rate*100)
		}
		fmt.Fprintln(w, strings.Repeat("─", 46))
		fmt.Fprintf(w, "%-16s  %8d  %8d  %6.1f%%\n", "TOTAL", st.Total, st.Solved, st.SolvedRatio()*100)
		fmt.Fprintf(w, "\nAverage solve time: %.1fms\n", st.AvgLatencyMs)
		return nil
	},
}
