package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/abhisek/mathstep/internal/problem"
)

// SolveEvent records one solved (or unsolvable) problem.
type SolveEvent struct {
	ent.Schema
}

func (SolveEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SolveEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("request_id").
			NotEmpty().
			Comment("Request ID assigned by the caller or the pipeline"),
		field.String("source").
			MaxLen(16).
			Default("text").
			Comment("text or image"),
		field.Text("problem").
			Comment("Problem as submitted"),
		field.Text("normalized").
			Default("").
			Comment("Canonical form the strategy received"),
		field.String("problem_type").
			MaxLen(32).
			Comment("arithmetic, differentiation, integration, algebra or limit"),
		field.Text("solution").
			Default("").
			Comment("Solution text, empty when unsolved"),
		field.Bool("solved").
			Default(false),
		field.JSON("steps", []problem.Step{}).
			Comment("Narrated steps"),
		field.Int64("latency_ms").
			Default(0),
		field.Text("error_message").
			Default("").
			Comment("Explanation of the final error step when unsolved"),
	}
}

func (SolveEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("problem_type"),
		index.Fields("solved"),
		index.Fields("request_id"),
	}
}
