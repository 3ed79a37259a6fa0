package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const usersTable = "users"

var userColumns = []string{
	"id", "username", "email", "password_hash", "created_at", "last_login",
	"display_explanations", "question_mode", "interactive_mode",
}

type userRepo struct {
	drv *entsql.Driver
}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if !u.QuestionMode.Valid() {
		u.QuestionMode = ModeMultipleChoice
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(usersTable).
		Columns("username", "email", "password_hash", "created_at", "last_login",
			"display_explanations", "question_mode", "interactive_mode").
		Values(u.Username, u.Email, u.PasswordHash, formatTime(u.CreatedAt), formatTime(u.LastLogin),
			boolInt(u.DisplayExplanations), string(u.QuestionMode), boolInt(u.InteractiveMode)).
		Query()
	id, err := insert(ctx, r.drv, q, args)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return nil
}

func (r *userRepo) Get(ctx context.Context, id int64) (*User, error) {
	return r.getBy(ctx, entsql.EQ("id", id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, entsql.EQ("email", email))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getBy(ctx, entsql.EQ("username", username))
}

func (r *userRepo) getBy(ctx context.Context, p *entsql.Predicate) (*User, error) {
	b := entsql.Dialect(dialect.SQLite)
	q, args := b.Select(userColumns...).From(b.Table(usersTable)).Where(p).Limit(1).Query()

	var u User
	err := queryOne(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var created, lastLogin, mode string
		var explain, interactive int
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created, &lastLogin,
			&explain, &mode, &interactive); err != nil {
			return err
		}
		u.CreatedAt = parseTime(created)
		u.LastLogin = parseTime(lastLogin)
		u.DisplayExplanations = explain != 0
		u.QuestionMode = QuestionMode(mode)
		u.InteractiveMode = interactive != 0
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Update(usersTable).
		Set("last_login", formatTime(at)).
		Where(entsql.EQ("id", id)).
		Query()
	return execAffecting(ctx, r.drv, "touch last login", q, args)
}

func (r *userRepo) UpdatePreferences(ctx context.Context, id int64, prefs Preferences) error {
	if !prefs.QuestionMode.Valid() {
		return fmt.Errorf("update preferences: invalid question mode %q", prefs.QuestionMode)
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Update(usersTable).
		Set("display_explanations", boolInt(prefs.DisplayExplanations)).
		Set("question_mode", string(prefs.QuestionMode)).
		Set("interactive_mode", boolInt(prefs.InteractiveMode)).
		Where(entsql.EQ("id", id)).
		Query()
	return execAffecting(ctx, r.drv, "update preferences", q, args)
}

// execAffecting runs an update and returns ErrNotFound if no row matched.
func execAffecting(ctx context.Context, drv *entsql.Driver, op, q string, args []any) error {
	var res sql.Result
	if err := drv.Exec(ctx, q, args, &res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
