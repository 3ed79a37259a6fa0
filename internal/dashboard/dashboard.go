// Package dashboard builds performance summaries from a user's answers.
package dashboard

import (
	"context"
	"time"

	"github.com/abhisek/adaptiq/internal/store"
)

const (
	// Window is the span covered by the daily time series.
	Window = 30 * 24 * time.Hour

	// RecentLimit is the number of answers in the activity feed.
	RecentLimit = 10
)

// SubjectPerformance is the accuracy for one subject.
type SubjectPerformance struct {
	Name     string  `json:"name"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// DailyPoint is the accuracy for one day.
type DailyPoint struct {
	Date     string  `json:"date"`
	Accuracy float64 `json:"accuracy"`
}

// Stats is the dashboard summary. Accuracies are percentages (0-100).
type Stats struct {
	TotalQuestions         int                  `json:"total_questions"`
	CorrectAnswers         int                  `json:"correct_answers"`
	Accuracy               float64              `json:"accuracy"`
	AvgResponseTime        float64              `json:"avg_response_time"`
	DifficultyDistribution map[int]int          `json:"difficulty_distribution"`
	SubjectPerformance     []SubjectPerformance `json:"subject_performance"`
	TimeSeries             []DailyPoint         `json:"time_series"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	QuestionText string  `json:"question_text"`
	Subject      string  `json:"subject"`
	IsCorrect    bool    `json:"is_correct"`
	Date         string  `json:"date"`
	Difficulty   int     `json:"difficulty"`
	ResponseTime float64 `json:"response_time"`
}

// Service computes dashboard data.
type Service struct {
	stats store.StatsRepo
	now   func() time.Time
}

// New creates a Service.
func New(stats store.StatsRepo) *Service {
	return &Service{stats: stats, now: time.Now}
}

// Stats returns the summary for a user.
func (s *Service) Stats(ctx context.Context, userID int64) (*Stats, error) {
	raw, err := s.stats.UserStats(ctx, userID, s.now().Add(-Window))
	if err != nil {
		return nil, err
	}

	out := &Stats{
		TotalQuestions:         raw.Total,
		CorrectAnswers:         raw.Correct,
		Accuracy:               percent(raw.Correct, raw.Total),
		AvgResponseTime:        raw.AvgResponseTime,
		DifficultyDistribution: raw.ByDifficulty,
		SubjectPerformance:     make([]SubjectPerformance, 0, len(raw.BySubject)),
		TimeSeries:             make([]DailyPoint, 0, len(raw.Daily)),
	}
	if out.DifficultyDistribution == nil {
		out.DifficultyDistribution = map[int]int{}
	}
	for _, t := range raw.BySubject {
		out.SubjectPerformance = append(out.SubjectPerformance, SubjectPerformance{
			Name:     t.Name,
			Total:    t.Total,
			Correct:  t.Correct,
			Accuracy: percent(t.Correct, t.Total),
		})
	}
	for _, d := range raw.Daily {
		out.TimeSeries = append(out.TimeSeries, DailyPoint{Date: d.Date, Accuracy: percent(d.Correct, d.Total)})
	}
	return out, nil
}

// RecentActivity returns the user's latest answers, newest first.
func (s *Service) RecentActivity(ctx context.Context, userID int64) ([]Activity, error) {
	rows, err := s.stats.RecentActivity(ctx, userID, RecentLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Activity, 0, len(rows))
	for _, r := range rows {
		out = append(out, Activity{
			QuestionText: r.QuestionText,
			Subject:      r.Subject,
			IsCorrect:    r.IsCorrect,
			Date:         r.AnsweredAt.UTC().Format("2006-01-02 15:04"),
			Difficulty:   r.Difficulty,
			ResponseTime: r.ResponseTime,
		})
	}
	return out, nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
