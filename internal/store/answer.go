package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const answersTable = "answers"

type answerRepo struct {
	drv *entsql.Driver
}

func (r *answerRepo) Create(ctx context.Context, a *Answer) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(answersTable).
		Columns("user_id", "question_id", "user_response", "is_correct", "response_time",
			"mode", "difficulty_at_time", "created_at").
		Values(a.UserID, a.QuestionID, a.UserResponse, boolInt(a.IsCorrect), a.ResponseTime,
			string(a.Mode), a.DifficultyAtTime, formatTime(a.CreatedAt)).
		Query()
	id, err := insert(ctx, r.drv, q, args)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	a.ID = id
	return nil
}

func (r *answerRepo) ListByUser(ctx context.Context, userID int64) ([]Answer, error) {
	b := entsql.Dialect(dialect.SQLite)
	q, args := b.Select("id", "user_id", "question_id", "user_response", "is_correct",
		"response_time", "mode", "difficulty_at_time", "created_at").
		From(b.Table(answersTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("id").
		Query()

	var out []Answer
	err := queryAll(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var a Answer
		var correct int
		var mode, created string
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.UserResponse, &correct,
			&a.ResponseTime, &mode, &a.DifficultyAtTime, &created); err != nil {
			return err
		}
		a.IsCorrect = correct != 0
		a.Mode = QuestionMode(mode)
		a.CreatedAt = parseTime(created)
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return out, nil
}
