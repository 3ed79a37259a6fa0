package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const llmEventsTable = "llm_request_events"

// eventRepo implements EventRepo.
type eventRepo struct {
	drv *entsql.Driver
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(llmEventsTable).
		Columns("timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body").
		Values(formatTime(time.Now()), data.Provider, data.Model, data.Purpose, data.InputTokens,
			data.OutputTokens, data.LatencyMs, boolInt(data.Success), data.ErrorMessage,
			data.RequestBody, data.ResponseBody).
		Query()
	if _, err := insert(ctx, r.drv, q, args); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

var llmEventColumns = []string{
	"id", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

// QueryLLMEvents returns events newest first.
func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(llmEventColumns...).From(b.Table(llmEventsTable))

	var preds []*entsql.Predicate
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", formatTime(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", formatTime(opts.To)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	q, args := sel.Query()

	var out []LLMRequestEvent
	err := queryAll(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return err
		}
		out = append(out, *e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error) {
	b := entsql.Dialect(dialect.SQLite)
	q, args := b.Select(llmEventColumns...).
		From(b.Table(llmEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var e *LLMRequestEvent
	err := queryOne(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var err error
		e, err = scanLLMEvent(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "model")
}

func (r *eventRepo) usageBy(ctx context.Context, column string) ([]LLMUsage, error) {
	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(llmEventsTable)
	q, args := b.Select(
		t.C(column),
		entsql.Count("*"),
		entsql.Sum(t.C("input_tokens")),
		entsql.Sum(t.C("output_tokens")),
		entsql.Avg(t.C("latency_ms")),
	).
		From(t).
		GroupBy(t.C(column)).
		OrderBy(entsql.Desc(entsql.Count("*"))).
		Query()

	var out []LLMUsage
	err := queryAll(ctx, r.drv, q, args, func(rows *entsql.Rows) error {
		var u LLMUsage
		var avg float64
		if err := rows.Scan(&u.Key, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return err
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LLM usage by %s: %w", column, err)
	}
	return out, nil
}

func scanLLMEvent(rows *entsql.Rows) (*LLMRequestEvent, error) {
	var e LLMRequestEvent
	var ts string
	var success int
	if err := rows.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens,
		&e.OutputTokens, &e.LatencyMs, &success, &e.ErrorMessage, &e.RequestBody,
		&e.ResponseBody); err != nil {
		return nil, err
	}
	e.Timestamp = parseTime(ts)
	e.Success = success != 0
	return &e, nil
}
