package store

import (
	"context"
	"database/sql"
	"fmt"
)

// eventSequence is the counter shared by solve and LLM request events, so
// both tables sort into one timeline (did the OCR call come before the
// solve it fed?). The counter lives in the database; a CLI solve and a
// running server on the same file never hand out the same number.
const eventSequence = "events"

type sequence struct {
	db   *sql.DB
	name string
}

// Next increments the counter and returns the new value. The first call
// returns 1.
func (s sequence) Next(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO `+countersTable+` (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = value + 1
		RETURNING value`,
		s.name,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", s.name, err)
	}
	return n, nil
}
