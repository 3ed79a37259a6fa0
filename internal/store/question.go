package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const questionsTable = "questions"

type questionRepo struct {
	drv *entsql.Driver
}

func (r *questionRepo) Create(ctx context.Context, q *Question) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if (q.Options == nil) != (q.CorrectOption == "") {
		return fmt.Errorf("create question: options and correct option must be set together")
	}

	var a, b, c, d, correct any
	if q.Options != nil {
		a, b, c, d = q.Options.A, q.Options.B, q.Options.C, q.Options.D
		correct = q.CorrectOption
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(questionsTable).
		Columns("subject_id", "text", "answer", "explanation", "difficulty",
			"option_a", "option_b", "option_c", "option_d", "correct_option", "created_at").
		Values(q.SubjectID, q.Text, q.Answer, q.Explanation, q.Difficulty,
			a, b, c, d, correct, formatTime(q.CreatedAt)).
		Query()
	id, err := insert(ctx, r.drv, query, args)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	q.ID = id
	return nil
}

func (r *questionRepo) Get(ctx context.Context, id int64) (*Question, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "subject_id", "text", "answer", "explanation", "difficulty",
		"option_a", "option_b", "option_c", "option_d", "correct_option", "created_at").
		From(b.Table(questionsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var q Question
	err := queryOne(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var a, bb, c, d, correct sql.NullString
		var created string
		if err := rows.Scan(&q.ID, &q.SubjectID, &q.Text, &q.Answer, &q.Explanation, &q.Difficulty,
			&a, &bb, &c, &d, &correct, &created); err != nil {
			return err
		}
		if correct.Valid && correct.String != "" {
			q.Options = &Options{A: a.String, B: bb.String, C: c.String, D: d.String}
			q.CorrectOption = correct.String
		}
		q.CreatedAt = parseTime(created)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

func (r *questionRepo) RecentTexts(ctx context.Context, subjectID int64, limit int) ([]string, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select("text").
		From(b.Table(questionsTable)).
		Where(entsql.EQ("subject_id", subjectID)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	var out []string
	err := queryAll(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var text string
		if err := rows.Scan(&text); err != nil {
			return err
		}
		out = append(out, text)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recent question texts: %w", err)
	}
	return out, nil
}
