package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent is one provider call made while reading a problem image,
// kept for cost reporting and for replaying what the model saw.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider"),
		field.String("model").Comment("Model that served the call, not the alias asked for"),
		field.String("purpose").Comment("Caller label, currently always ocr"),

		field.Int("input_tokens").NonNegative().Default(0),
		field.Int("output_tokens").NonNegative().Default(0),
		field.Int64("latency_ms").NonNegative().Default(0),

		field.Bool("success"),
		field.Text("error_message").Default(""),

		// Images are replaced by a "[image: type, n bytes]" marker.
		field.Text("request_body").Default(""),
		field.Text("response_body").Default(""),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose", "success"),
		index.Fields("model"),
	}
}
