package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const subjectsTable = "subjects"

type subjectRepo struct {
	drv *entsql.Driver
}

func (r *subjectRepo) Create(ctx context.Context, s *Subject) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(subjectsTable).
		Columns("name", "description", "created_at").
		Values(s.Name, s.Description, formatTime(s.CreatedAt)).
		Query()
	id, err := insert(ctx, r.drv, q, args)
	if err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	s.ID = id
	return nil
}

func (r *subjectRepo) Get(ctx context.Context, id int64) (*Subject, error) {
	return r.getBy(ctx, entsql.EQ("id", id))
}

func (r *subjectRepo) GetByName(ctx context.Context, name string) (*Subject, error) {
	return r.getBy(ctx, entsql.EQ("name", name))
}

func (r *subjectRepo) getBy(ctx context.Context, p *entsql.Predicate) (*Subject, error) {
	b := entsql.Dialect(dialect.SQLite)
	q, args := b.Select("id", "name", "description", "created_at").
		From(b.Table(subjectsTable)).
		Where(p).
		Limit(1).
		Query()

	var s Subject
	err := queryOne(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		return scanSubject(rows, &s)
	})
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &s, nil
}

// List returns all subjects ordered by name.
func (r *subjectRepo) List(ctx context.Context) ([]Subject, error) {
	b := entsql.Dialect(dialect.SQLite)
	q, args := b.Select("id", "name", "description", "created_at").
		From(b.Table(subjectsTable)).
		OrderBy("name").
		Query()

	var out []Subject
	err := queryAll(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var s Subject
		if err := scanSubject(rows, &s); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return out, nil
}

func scanSubject(rows *entsql.Rows, s *Subject) error {
	var created string
	if err := rows.Scan(&s.ID, &s.Name, &s.Description, &created); err != nil {
		return err
	}
	s.CreatedAt = parseTime(created)
	return nil
}
