package generator

import (
	"context"

	"github.com/crewtrack/modelgen/loader"
	"github.com/crewtrack/modelgen/logger"
	"github.com/crewtrack/modelgen/schema"
)

// fakeSource serves a fixture snapshot in place of a live database.
type fakeSource struct {
	snap *schema.Snapshot
	err  error
}

func (f *fakeSource) Extract(ctx context.Context) (*schema.Snapshot, error) {
	return f.snap, f.err
}

func strptr(s string) *string { return &s }

// fixtureSnapshot models the tracking app's core tables: clients with an
// enum and soft deletion, jobs with a foreign key and positioning, tasks
// with a self-referential parent, notes as a polymorphic activity log, and
// an internal bookkeeping table that must never be generated.
func fixtureSnapshot() *schema.Snapshot {
	return &schema.Snapshot{
		Tables: []schema.TableSchema{
			{
				Name: "clients",
				Columns: []schema.Column{
					{Name: "id", Type: "bigint"},
					{Name: "name", Type: "character varying"},
					{Name: "client_type", Type: "client_type", EnumValues: []string{"residential", "business"}, Default: strptr("'residential'::client_type")},
					{Name: "deleted_at", Type: "timestamp without time zone", Nullable: true},
					{Name: "created_at", Type: "timestamp without time zone"},
					{Name: "updated_at", Type: "timestamp without time zone"},
				},
			},
			{
				Name: "jobs",
				Columns: []schema.Column{
					{Name: "id", Type: "bigint"},
					{Name: "title", Type: "character varying"},
					{Name: "client_id", Type: "bigint"},
					{Name: "position", Type: "integer", Default: strptr("0")},
					{Name: "created_at", Type: "timestamp without time zone"},
				},
			},
			{
				Name: "notes",
				Columns: []schema.Column{
					{Name: "id", Type: "bigint"},
					{Name: "body", Type: "text", Nullable: true},
					{Name: "notable_type", Type: "character varying"},
					{Name: "notable_id", Type: "bigint"},
				},
			},
			{
				Name: "schema_migrations",
				Columns: []schema.Column{
					{Name: "version", Type: "character varying"},
				},
			},
			{
				Name: "tasks",
				Columns: []schema.Column{
					{Name: "id", Type: "bigint"},
					{Name: "title", Type: "character varying"},
					{Name: "job_id", Type: "bigint"},
					{Name: "parent_id", Type: "bigint", Nullable: true},
				},
			},
		},
		ForeignKeys: []schema.ForeignKey{
			{Table: "jobs", Column: "client_id", ReferencesTable: "clients", ReferencesColumn: "id"},
			{Table: "tasks", Column: "job_id", ReferencesTable: "jobs", ReferencesColumn: "id"},
			{Table: "tasks", Column: "parent_id", ReferencesTable: "tasks", ReferencesColumn: "id"},
		},
	}
}

// fixtureConfig declares the polymorphic activity log and the loggable
// capability list.
func fixtureConfig() *loader.Config {
	return &loader.Config{
		Models: map[string]loader.ModelConfig{
			"notes": {
				BelongsTo: []loader.Association{{Name: "notable", Polymorphic: true}},
			},
			"clients": {
				HasMany: []loader.Association{{Name: "notes", As: "notable"}},
			},
			"jobs": {
				HasMany: []loader.Association{{Name: "notes", As: "notable"}},
			},
		},
		Loggable: []string{"Client", "Job"},
	}
}

func fixtureRelationships() *SchemaRelationships {
	return BuildRelationships(fixtureSnapshot(), fixtureConfig())
}

func testOptions(dir string) Options {
	return Options{
		OutputDir:    dir,
		Associations: fixtureConfig(),
		Logger:       logger.Nop(),
		Workers:      2,
	}
}
