package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		renderEventList(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and reply of an LLM request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if store.IsNotFound(err) {
			return fmt.Errorf("event %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		renderEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		renderUsage(cmd.OutOrStdout(), byPurpose, byModel)
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (question-gen, answer-eval, followup, llm-test)")
	llmListCmd.Flags().Duration("since", 0, "Only show events newer than this (e.g. 24h)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

func renderEventList(w io.Writer, events []store.LLMRequestEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No LLM events found."))
		return
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-13s  %-28s  %-6s  %-6s  %-7s  %s\n",
		"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
	fmt.Fprintln(w, theme.Rule.Render(strings.Repeat("─", 100)))

	for _, e := range events {
		fmt.Fprintf(w, "%-5d  %-19s  %-13s  %-28s  %-6d  %-6d  %-7d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			truncate(e.Purpose, 13),
			truncate(e.Model, 28),
			e.InputTokens,
			e.OutputTokens,
			e.LatencyMs,
			theme.Mark(e.Success),
		)
	}
}

func renderEvent(w io.Writer, e *store.LLMRequestEvent) {
	sep := theme.Rule.Render(strings.Repeat("─", 60))

	fmt.Fprintf(w, "ID:        %d\n", e.ID)
	fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider:  %s\n", e.Provider)
	fmt.Fprintf(w, "Model:     %s\n", e.Model)
	fmt.Fprintf(w, "Purpose:   %s\n", e.Purpose)
	fmt.Fprintf(w, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(w, "Latency:   %dms\n", e.LatencyMs)
	fmt.Fprintf(w, "Success:   %s\n", theme.Mark(e.Success))
	if e.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:     %s\n", theme.Incorrect.Render(e.ErrorMessage))
	}

	for _, part := range []struct{ title, body string }{
		{"REQUEST", e.RequestBody},
		{"RESPONSE", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, theme.Value.Render(part.title))
		fmt.Fprintln(w, sep)
		if part.body != "" {
			fmt.Fprintln(w, part.body)
		} else {
			fmt.Fprintln(w, theme.Hint.Render("(not captured)"))
		}
	}
}

func renderUsage(w io.Writer, byPurpose, byModel []store.LLMUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No LLM usage recorded yet."))
		return
	}
	rule := theme.Rule.Render(strings.Repeat("─", 72))

	fmt.Fprintln(w, theme.Title.Render("Usage by Purpose"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Fprintln(w, rule)

	var totalCalls, totalIn, totalOut int
	for _, u := range byPurpose {
		fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
			truncate(u.Key, 16), u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		totalCalls += u.Calls
		totalIn += u.InputTokens
		totalOut += u.OutputTokens
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d\n",
		"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

	if len(byModel) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Title.Render("Estimated Cost (USD)"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n",
		"Model", "Calls", "Input", "Output", "Cost")
	fmt.Fprintln(w, rule)

	var totalCost float64
	var unknown []string
	for _, u := range byModel {
		cost := llm.LookupCost(u.Key)
		if cost == nil {
			unknown = append(unknown, u.Key)
			fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(u.Key, 32), u.Calls, u.InputTokens, u.OutputTokens, "?")
			continue
		}
		c := cost.Cost(u.InputTokens, u.OutputTokens)
		totalCost += c
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(u.Key, 32), u.Calls, u.InputTokens, u.OutputTokens, formatCost(c))
	}

	fmt.Fprintln(w, rule)
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))

	if len(unknown) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", theme.Warning.Render("Pricing unavailable for:"), strings.Join(unknown, ", "))
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
