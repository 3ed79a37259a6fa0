package store

import (
	"context"
	"fmt"
)

// schema is applied on every Open. Statements must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL,
		last_login TEXT NOT NULL DEFAULT '',
		display_explanations INTEGER NOT NULL DEFAULT 1,
		question_mode TEXT NOT NULL DEFAULT 'multiple_choice',
		interactive_mode INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS subjects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject_id INTEGER NOT NULL REFERENCES subjects(id),
		text TEXT NOT NULL,
		answer TEXT NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		difficulty INTEGER NOT NULL,
		option_a TEXT,
		option_b TEXT,
		option_c TEXT,
		option_d TEXT,
		correct_option TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject_id, id)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		question_id INTEGER NOT NULL REFERENCES questions(id),
		user_response TEXT NOT NULL,
		is_correct INTEGER NOT NULL,
		response_time REAL NOT NULL DEFAULT 0,
		mode TEXT NOT NULL,
		difficulty_at_time INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_user ON answers(user_id, id)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL DEFAULT '',
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_events_purpose ON llm_request_events(purpose)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
