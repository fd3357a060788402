package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Counter is a named monotonic counter. Events draw their sequence numbers
// from the "events" row.
type Counter struct {
	ent.Schema
}

func (Counter) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			Unique().
			Immutable(),
		field.Int64("value").
			Default(0).
			Comment("Last value handed out"),
	}
}
