package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/llm"
	"github.com/abhisek/mathstep/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM calls made for text detection",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := store.LLMQuery{}
		q.Limit, _ = cmd.Flags().GetInt("limit")
		q.Purpose, _ = cmd.Flags().GetString("purpose")
		q.FailedOnly, _ = cmd.Flags().GetBool("failed")

		e, err := newEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()
		repo, err := e.requireRepo()
		if err != nil {
			return err
		}

		events, err := repo.QueryLLMEvents(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No LLM requests found.")
			return nil
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIME\tPURPOSE\tMODEL\tIN\tOUT\tMS\tOK")
		for _, ev := range events {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				ev.ID,
				ev.Timestamp.Local().Format(timeLayout),
				ev.Purpose,
				truncate(ev.Model, 28),
				ev.InputTokens,
				ev.OutputTokens,
				ev.LatencyMs,
				okMark(ev.Success),
			)
		}
		return tw.Flush()
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the captured request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
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

		ev, err := repo.GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if done, err := encode(w, ev, format); done {
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		fmt.Fprintf(tw, "ID:\t%d\n", ev.ID)
		fmt.Fprintf(tw, "Time:\t%s\n", ev.Timestamp.Local().Format(timeLayout))
		fmt.Fprintf(tw, "Provider:\t%s\n", ev.Provider)
		fmt.Fprintf(tw, "Model:\t%s\n", ev.Model)
		fmt.Fprintf(tw, "Purpose:\t%s\n", ev.Purpose)
		fmt.Fprintf(tw, "Tokens:\t%d in / %d out\n", ev.InputTokens, ev.OutputTokens)
		fmt.Fprintf(tw, "Latency:\t%dms\n", ev.LatencyMs)
		fmt.Fprintf(tw, "Success:\t%v\n", ev.Success)
		if ev.ErrorMessage != "" {
			fmt.Fprintf(tw, "Error:\t%s\n", ev.ErrorMessage)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		section(w, "REQUEST", ev.RequestBody)
		section(w, "RESPONSE", ev.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show LLM token usage and estimated cost",
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

		ctx := cmd.Context()
		byPurpose, err := repo.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		w := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(w, "No LLM usage recorded yet.")
			return nil
		}
		byModel, err := repo.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		fmt.Fprintln(w, "Usage by purpose")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "PURPOSE\tCALLS\tINPUT\tOUTPUT\tAVG MS\t")
		var total store.LLMUsage
		for _, u := range byPurpose {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			total.Calls += u.Calls
			total.InputTokens += u.InputTokens
			total.OutputTokens += u.OutputTokens
		}
		fmt.Fprintf(tw, "total\t%d\t%d\t%d\t\t\n", total.Calls, total.InputTokens, total.OutputTokens)
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Estimated cost (USD)")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "MODEL\tCALLS\tCOST\t")
		var sum float64
		var unpriced []string
		for _, u := range byModel {
			cost := "?"
			if p := llm.LookupCost(u.Model); p != nil {
				c := p.Cost(u.InputTokens, u.OutputTokens)
				sum += c
				cost = formatCost(c)
			} else {
				unpriced = append(unpriced, u.Model)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t\n", truncate(u.Model, 32), u.Calls, cost)
		}
		label := "total"
		if len(unpriced) > 0 {
			label = "total (partial)"
		}
		fmt.Fprintf(tw, "%s\t\t%s\t\n", label, formatCost(sum))
		if err := tw.Flush(); err != nil {
			return err
		}
		if len(unpriced) > 0 {
			fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func section(w io.Writer, title, body string) {
	rule := strings.Repeat("─", 60)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintf(w, "\n%s\n%s\n%s\n%s\n", rule, title, rule, body)
}

func okMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show this purpose (e.g. ocr)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")
	addOutputFlag(llmViewCmd)

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
