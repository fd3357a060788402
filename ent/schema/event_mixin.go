// Package schema declares the event tables. The store derives its SQL
// tables from these definitions at startup; there is no generated client.
package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// EventMixin gives every event table its place in the shared timeline.
type EventMixin struct {
	mixin.Schema
}

func (EventMixin) Fields() []ent.Field {
	return []ent.Field{
		// Drawn from the "events" counter, shared across event tables.
		field.Int64("sequence").Positive().Unique().Immutable(),
		// Always stored in UTC. Retention pruning filters on it.
		field.Time("timestamp").Default(time.Now).Immutable(),
	}
}

func (EventMixin) Indexes() []ent.Index {
	return []ent.Index{index.Fields("timestamp")}
}
