package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/solver"
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Read a problem from a photo or screenshot and solve it",
	Long: `Reads the problem text out of a PNG, JPEG, GIF or WebP image with the
configured LLM provider, then solves it like the solve command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		img, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		e, err := newEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Server.SolveTimeout)
		defer cancel()

		res, err := e.pipeline(ctx, true).SolveImage(ctx, img)
		switch {
		case errors.Is(err, solver.ErrNoDetector):
			return errNoProvider
		case errors.Is(err, solver.ErrNoText):
			return fmt.Errorf("no text found in %s", args[0])
		case err != nil:
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
	addOutputFlag(scanCmd)
}
