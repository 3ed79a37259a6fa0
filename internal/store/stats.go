package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type statsRepo struct {
	drv *entsql.Driver
}

// date truncates a stored timestamp column to its YYYY-MM-DD day.
func date(ident string) string {
	f := &entsql.Func{}
	f.Append(func(b *entsql.Builder) {
		b.WriteString("DATE").Wrap(func(b *entsql.Builder) {
			b.Ident(ident)
		})
	})
	return f.String()
}

func (r *statsRepo) UserStats(ctx context.Context, userID int64, since time.Time) (*UserStats, error) {
	st := &UserStats{ByDifficulty: make(map[int]int)}
	b := entsql.Dialect(dialect.SQLite)
	a := b.Table(answersTable)

	q, args := b.Select(entsql.Count("*"), entsql.Sum(a.C("is_correct")), entsql.Avg(a.C("response_time"))).
		From(a).
		Where(entsql.EQ(a.C("user_id"), userID)).
		Query()
	err := queryOne(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		// SUM and AVG are NULL when the user has no answers.
		var correct sql.NullInt64
		var avg sql.NullFloat64
		if err := rows.Scan(&st.Total, &correct, &avg); err != nil {
			return err
		}
		st.Correct = int(correct.Int64)
		st.AvgResponseTime = avg.Float64
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("answer totals: %w", err)
	}

	q, args = b.Select(a.C("difficulty_at_time"), entsql.Count("*")).
		From(a).
		Where(entsql.EQ(a.C("user_id"), userID)).
		GroupBy(a.C("difficulty_at_time")).
		OrderBy(a.C("difficulty_at_time")).
		Query()
	err = queryAll(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var level, n int
		if err := rows.Scan(&level, &n); err != nil {
			return err
		}
		st.ByDifficulty[level] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("answers by difficulty: %w", err)
	}

	qt, s := b.Table(questionsTable), b.Table(subjectsTable)
	q, args = b.Select(s.C("name"), entsql.Count("*"), entsql.Sum(a.C("is_correct"))).
		From(a).
		Join(qt).On(a.C("question_id"), qt.C("id")).
		Join(s).On(qt.C("subject_id"), s.C("id")).
		Where(entsql.EQ(a.C("user_id"), userID)).
		GroupBy(s.C("id")).
		OrderBy(s.C("name")).
		Query()
	err = queryAll(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var t SubjectTally
		if err := rows.Scan(&t.Name, &t.Total, &t.Correct); err != nil {
			return err
		}
		st.BySubject = append(st.BySubject, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("answers by subject: %w", err)
	}

	q, args = b.Select(entsql.As(date(a.C("created_at")), "day"), entsql.Count("*"), entsql.Sum(a.C("is_correct"))).
		From(a).
		Where(entsql.And(
			entsql.EQ(a.C("user_id"), userID),
			entsql.GTE(a.C("created_at"), formatTime(since)),
		)).
		GroupBy("day").
		OrderBy("day").
		Query()
	err = queryAll(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var t DailyTally
		if err := rows.Scan(&t.Date, &t.Total, &t.Correct); err != nil {
			return err
		}
		st.Daily = append(st.Daily, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("daily answers: %w", err)
	}

	return st, nil
}

func (r *statsRepo) RecentActivity(ctx context.Context, userID int64, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	b := entsql.Dialect(dialect.SQLite)
	a, qt, s := b.Table(answersTable), b.Table(questionsTable), b.Table(subjectsTable)
	q, args := b.Select(qt.C("text"), s.C("name"), a.C("is_correct"), a.C("created_at"),
		a.C("difficulty_at_time"), a.C("response_time")).
		From(a).
		Join(qt).On(a.C("question_id"), qt.C("id")).
		Join(s).On(qt.C("subject_id"), s.C("id")).
		Where(entsql.EQ(a.C("user_id"), userID)).
		OrderBy(entsql.Desc(a.C("created_at")), entsql.Desc(a.C("id"))).
		Limit(limit).
		Query()

	var out []Activity
	err := queryAll(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var act Activity
		var correct int
		var created string
		if err := rows.Scan(&act.QuestionText, &act.Subject, &correct, &created, &act.Difficulty, &act.ResponseTime); err != nil {
			return err
		}
		act.IsCorrect = correct != 0
		act.AnsweredAt = parseTime(created)
		out = append(out, act)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return out, nil
}
