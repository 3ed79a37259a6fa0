package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/store/memstore"
)

func TestStats(t *testing.T) {
	ms := memstore.New()
	ctx := context.Background()
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	u := &store.User{Username: "ada", Email: "ada@example.com", Preferences: store.DefaultPreferences()}
	require.NoError(t, ms.Users().Create(ctx, u))
	py := &store.Subject{Name: "Python"}
	require.NoError(t, ms.Subjects().Create(ctx, py))
	q := &store.Question{SubjectID: py.ID, Text: "q", Answer: "a", Difficulty: 2}
	require.NoError(t, ms.Questions().Create(ctx, q))

	answers := []struct {
		correct bool
		at      time.Time
	}{
		{true, now.AddDate(0, 0, -45)},
		{true, now.AddDate(0, 0, -1)},
		{false, now.AddDate(0, 0, -1)},
		{true, now},
	}
	for _, a := range answers {
		require.NoError(t, ms.Answers().Create(ctx, &store.Answer{
			UserID: u.ID, QuestionID: q.ID, IsCorrect: a.correct, ResponseTime: 2,
			Mode: store.ModeMultipleChoice, DifficultyAtTime: 2, CreatedAt: a.at,
		}))
	}

	svc := New(ms.Stats())
	svc.now = func() time.Time { return now }

	st, err := svc.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalQuestions)
	assert.Equal(t, 3, st.CorrectAnswers)
	assert.Equal(t, 75.0, st.Accuracy)
	assert.Equal(t, 2.0, st.AvgResponseTime)
	assert.Equal(t, map[int]int{2: 4}, st.DifficultyDistribution)
	require.Len(t, st.SubjectPerformance, 1)
	assert.Equal(t, 75.0, st.SubjectPerformance[0].Accuracy)
	assert.Equal(t, []DailyPoint{{"2025-06-29", 50}, {"2025-06-30", 100}}, st.TimeSeries)

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"difficulty_distribution":{"2":4}`)

	acts, err := svc.RecentActivity(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, acts, 4)
	assert.Equal(t, "2025-06-30 12:00", acts[0].Date)
	assert.Equal(t, "Python", acts[0].Subject)
}

func TestStatsEmpty(t *testing.T) {
	ms := memstore.New()
	svc := New(ms.Stats())

	st, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, st.Accuracy)
	assert.NotNil(t, st.DifficultyDistribution)

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subject_performance":[]`)
	assert.Contains(t, string(raw), `"time_series":[]`)

	acts, err := svc.RecentActivity(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, acts)
}
