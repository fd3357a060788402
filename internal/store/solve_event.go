package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/mathstep/internal/problem"
)

// eventRepo implements EventRepo with ent's SQL builder and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq sequence
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

var solveColumns = []string{
	"id", "sequence", "timestamp", "request_id", "source", "problem",
	"normalized", "problem_type", "solution", "solved", "steps",
	"latency_ms", "error_message",
}

func (r *eventRepo) AppendSolve(ctx context.Context, data SolveEventData) error {
	steps, err := json.Marshal(data.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	source := data.Source
	if source == "" {
		source = problem.SourceText
	}

	query, args := builder().Insert(solveEventsTable).
		Columns(solveColumns[1:]...).
		Values(
			seqNum,
			time.Now().UTC(),
			data.RequestID,
			string(source),
			data.Problem,
			data.Normalized,
			string(data.Type),
			data.Solution,
			data.Solved,
			string(steps),
			data.LatencyMs,
			data.ErrorMessage,
		).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save solve event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySolves(ctx context.Context, q SolveQuery) ([]SolveEvent, error) {
	sel := builder().Select(solveColumns...).From(entsql.Table(solveEventsTable))
	applyQueryOpts(sel, q.QueryOpts)
	if q.Type != "" {
		sel.Where(entsql.EQ("problem_type", string(q.Type)))
	}
	if q.SolvedOnly {
		sel.Where(entsql.EQ("solved", true))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query solve events: %w", err)
	}
	defer rows.Close()

	var out []SolveEvent
	for rows.Next() {
		ev, err := scanSolve(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetSolve(ctx context.Context, id int) (*SolveEvent, error) {
	query, args := builder().Select(solveColumns...).
		From(entsql.Table(solveEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()
	ev, err := scanSolve(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("solve event %d: %w", id, ErrNotFound)
	}
	return ev, err
}

func (r *eventRepo) SolveStats(ctx context.Context) (SolveStats, error) {
	query, args := builder().Select(
		"problem_type",
		entsql.As(entsql.Count("*"), "total"),
		entsql.As(entsql.Sum("solved"), "solved_count"),
		entsql.As(entsql.Sum("latency_ms"), "latency_total"),
	).
		From(entsql.Table(solveEventsTable)).
		GroupBy("problem_type").
		OrderBy("problem_type").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return SolveStats{}, fmt.Errorf("query solve stats: %w", err)
	}
	defer rows.Close()

	var (
		stats        SolveStats
		latencyTotal int64
	)
	for rows.Next() {
		var (
			typ            string
			total, solved  int
			latencyForType sql.NullInt64
		)
		if err := rows.Scan(&typ, &total, &solved, &latencyForType); err != nil {
			return SolveStats{}, fmt.Errorf("scan solve stats: %w", err)
		}
		stats.ByType = append(stats.ByType, TypeStats{Type: problem.Type(typ), Total: total, Solved: solved})
		stats.Total += total
		stats.Solved += solved
		latencyTotal += latencyForType.Int64
	}
	if err := rows.Err(); err != nil {
		return SolveStats{}, err
	}
	if stats.Total > 0 {
		stats.AvgLatencyMs = float64(latencyTotal) / float64(stats.Total)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSolve(row rowScanner) (*SolveEvent, error) {
	var (
		ev          SolveEvent
		source, typ string
		steps       string
	)
	err := row.Scan(
		&ev.ID,
		&ev.Sequence,
		&ev.Timestamp,
		&ev.RequestID,
		&source,
		&ev.Problem,
		&ev.Normalized,
		&typ,
		&ev.Solution,
		&ev.Solved,
		&steps,
		&ev.LatencyMs,
		&ev.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan solve event: %w", err)
	}
	ev.Source = problem.Source(source)
	ev.Type = problem.Type(typ)
	if err := json.Unmarshal([]byte(steps), &ev.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps of event %d: %w", ev.ID, err)
	}
	return &ev, nil
}

// applyQueryOpts adds the shared filters and newest-first ordering.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}
