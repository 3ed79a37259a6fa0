package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/dashboard"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

const barWidth = 48

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("user")
		if username == "" {
			return errors.New("--user is required")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		u, err := s.Users().GetByUsername(ctx, username)
		if store.IsNotFound(err) {
			return fmt.Errorf("user %q not found", username)
		}
		if err != nil {
			return err
		}

		dash := dashboard.New(s.Stats())
		stats, err := dash.Stats(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		activity, err := dash.RecentActivity(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("load activity: %w", err)
		}

		renderStats(cmd.OutOrStdout(), u.Username, stats, activity)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("user", "u", "", "Username to report on")
}

func renderStats(w io.Writer, username string, stats *dashboard.Stats, activity []dashboard.Activity) {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Learning stats for "+username) + "\n")

	if stats.TotalQuestions == 0 {
		b.WriteString(theme.Hint.Render("No answers recorded yet.") + "\n")
		fmt.Fprint(w, b.String())
		return
	}

	summary := lipgloss.JoinVertical(lipgloss.Left,
		row("Questions answered", fmt.Sprintf("%d", stats.TotalQuestions)),
		row("Correct answers", fmt.Sprintf("%d", stats.CorrectAnswers)),
		row("Accuracy", fmt.Sprintf("%.1f%%", stats.Accuracy)),
		row("Avg response time", fmt.Sprintf("%.1fs", stats.AvgResponseTime)),
	)
	b.WriteString(theme.Card.Render(summary) + "\n")

	if len(stats.SubjectPerformance) > 0 {
		b.WriteString(theme.Heading.Render("By subject") + "\n")
		for _, sp := range stats.SubjectPerformance {
			b.WriteString(components.NewProgressBar(sp.Name, sp.Accuracy, true, barWidth).View() + "\n")
		}
	}

	if len(stats.DifficultyDistribution) > 0 {
		b.WriteString(theme.Heading.Render("By difficulty") + "\n")
		levels := make([]int, 0, len(stats.DifficultyDistribution))
		for lvl := range stats.DifficultyDistribution {
			levels = append(levels, lvl)
		}
		sort.Ints(levels)
		for _, lvl := range levels {
			b.WriteString(row(fmt.Sprintf("Level %d", lvl), fmt.Sprintf("%d", stats.DifficultyDistribution[lvl])) + "\n")
		}
	}

	if len(stats.TimeSeries) > 0 {
		b.WriteString(theme.Heading.Render("Last 30 days") + "\n")
		for _, p := range stats.TimeSeries {
			b.WriteString(components.NewProgressBar(p.Date, p.Accuracy, true, barWidth).View() + "\n")
		}
	}

	if len(activity) > 0 {
		b.WriteString(theme.Heading.Render("Recent activity") + "\n")
		for _, a := range activity {
			fmt.Fprintf(&b, "%s  %s  %-12s  L%-2d  %s\n",
				theme.Mark(a.IsCorrect),
				theme.Hint.Render(a.Date),
				truncate(a.Subject, 12),
				a.Difficulty,
				truncate(a.QuestionText, 60),
			)
		}
	}

	fmt.Fprint(w, b.String())
}

func row(label, value string) string {
	return theme.Label.Render(label) + theme.Value.Render(value)
}
