package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve <problem...>",
	Short: "Solve a problem and print every step",
	Example: `  mathstep solve "2 + 3 * 4"
  mathstep solve 'd/dx(x^2 + 3x)' -o json
  mathstep solve "solve x^2 - 4 = 0 for x"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		e, err := newEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Server.SolveTimeout)
		defer cancel()

		res, err := e.pipeline(ctx, false).Solve(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := printResult(cmd.OutOrStdout(), res, format); err != nil {
			return err
		}
		if !res.Solved() {
			return errUnsolved
		}
		return nil
	},
}

func init() {
	addOutputFlag(solveCmd)
}
