package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathstep/internal/problem"
)

// errUnsolved makes the process exit non-zero after printing the steps.
var errUnsolved = errors.New("no solution")

var outputFormats = []string{"text", "json", "yaml"}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "text", "Output format: "+strings.Join(outputFormats, ", "))
}

func outputFormat(cmd *cobra.Command) (string, error) {
	f, _ := cmd.Flags().GetString("output")
	for _, ok := range outputFormats {
		if f == ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of %s)", f, strings.Join(outputFormats, ", "))
}

// encode writes v as indented JSON or YAML. It reports false for the
// text format, which each command renders itself.
func encode(w io.Writer, v any, format string) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// printResult writes res in the given format.
func printResult(w io.Writer, res problem.Result, format string) error {
	if done, err := encode(w, res, format); done {
		return err
	}

	fmt.Fprintf(w, "Problem:  %s\n", res.Problem)
	fmt.Fprintf(w, "Type:     %s\n", res.Type)
	if res.Normalized != "" && res.Normalized != res.Problem {
		fmt.Fprintf(w, "Read as:  %s\n", res.Normalized)
	}
	fmt.Fprintln(w)

	for i, st := range res.Steps {
		fmt.Fprintf(w, "%2d. %s\n", i+1, st.Action)
		if st.Math != "" {
			fmt.Fprintf(w, "    %s\n", st.Math)
		}
		if st.Explanation != "" {
			fmt.Fprintf(w, "    %s\n", st.Explanation)
		}
	}
	fmt.Fprintln(w)

	if res.Solved() {
		fmt.Fprintf(w, "Answer:   %s\n", res.SolutionString())
	} else {
		fmt.Fprintln(w, "No solution.")
	}
	return nil
}
