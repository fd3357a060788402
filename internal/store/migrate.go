package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	sqlschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/mathstep/ent/schema"
)

const (
	solveEventsTable      = "solve_events"
	llmRequestEventsTable = "llm_request_events"
	countersTable         = "counters"
)

// Tables returns the SQL tables derived from the ent schema definitions.
func Tables() []*sqlschema.Table {
	return []*sqlschema.Table{
		tableFor(solveEventsTable, entschema.SolveEvent{}),
		tableFor(llmRequestEventsTable, entschema.LLMRequestEvent{}),
		tableFor(countersTable, entschema.Counter{}),
	}
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := sqlschema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, Tables()...)
}

// tableFor builds a table with an auto-increment id followed by the mixin
// fields and the schema's own fields.
func tableFor(name string, s ent.Interface) *sqlschema.Table {
	id := &sqlschema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	t := sqlschema.NewTable(name).AddPrimary(id)

	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	for _, f := range fields {
		t.AddColumn(columnFor(f.Descriptor()))
	}
	for _, idx := range indexes {
		d := idx.Descriptor()
		t.AddIndex(name+"_"+strings.Join(d.Fields, "_"), d.Unique, d.Fields)
	}
	return t
}

func columnFor(d *field.Descriptor) *sqlschema.Column {
	c := &sqlschema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Unique:   d.Unique,
		Nullable: d.Optional || d.Nillable,
		Size:     int64(d.Size),
	}
	// Only literal defaults map to SQL; function defaults such as time.Now
	// are supplied on insert.
	switch d.Default.(type) {
	case string, bool, int, int64, float64:
		c.Default = d.Default
	}
	return c
}
