package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(llmRequestEventsTable).
		Columns(llmColumns[1:]...).
		Values(
			seqNum,
			time.Now().UTC(),
			data.Provider,
			data.Model,
			data.Purpose,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
			data.RequestBody,
			data.ResponseBody,
		).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, q LLMQuery) ([]LLMRequestEvent, error) {
	sel := builder().Select(llmColumns...).From(entsql.Table(llmRequestEventsTable))
	applyQueryOpts(sel, q.QueryOpts)
	if q.Purpose != "" {
		sel.Where(entsql.EQ("purpose", q.Purpose))
	}
	if q.FailedOnly {
		sel.Where(entsql.EQ("success", false))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error) {
	query, args := builder().Select(llmColumns...).
		From(entsql.Table(llmRequestEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()
	ev, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("LLM event %d: %w", id, ErrNotFound)
	}
	return ev, err
}

func scanLLMEvent(row rowScanner) (*LLMRequestEvent, error) {
	var ev LLMRequestEvent
	err := row.Scan(
		&ev.ID,
		&ev.Sequence,
		&ev.Timestamp,
		&ev.Provider,
		&ev.Model,
		&ev.Purpose,
		&ev.InputTokens,
		&ev.OutputTokens,
		&ev.LatencyMs,
		&ev.Success,
		&ev.ErrorMessage,
		&ev.RequestBody,
		&ev.ResponseBody,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	return &ev, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "model")
}

// llmUsage groups LLM request events by column, busiest first.
func (r *eventRepo) llmUsage(ctx context.Context, column string) ([]LLMUsage, error) {
	query, args := builder().Select(
		column,
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_total"),
		entsql.As(entsql.Sum("output_tokens"), "output_total"),
		entsql.As(entsql.Avg("latency_ms"), "latency_avg"),
	).
		From(entsql.Table(llmRequestEventsTable)).
		GroupBy(column).
		OrderBy(entsql.Desc("calls"), column).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", column, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			key           string
			u             LLMUsage
			in, outTokens sql.NullInt64
			latency       sql.NullFloat64
		)
		if err := rows.Scan(&key, &u.Calls, &in, &outTokens, &latency); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		if column == "model" {
			u.Model = key
		} else {
			u.Purpose = key
		}
		u.InputTokens = int(in.Int64)
		u.OutputTokens = int(outTokens.Int64)
		u.AvgLatencyMs = int64(latency.Float64)
		out = append(out, u)
	}
	return out, rows.Err()
}
