package schema

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// ModelName derives the singular PascalCase model name for a table:
// "clients" -> "Client", "job_sites" -> "JobSite".
func ModelName(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}

// TypeName is the name of the generated data interface: "clients" -> "ClientType".
func TypeName(table string) string {
	return ModelName(table) + "Type"
}

// ReactiveName is the name of the generated reactive class: "clients" -> "ReactiveClient".
func ReactiveName(table string) string {
	return "Reactive" + ModelName(table)
}

// KebabName derives the generated file stem: "job_sites" -> "job-site".
func KebabName(table string) string {
	return inflect.Dasherize(inflect.Singularize(table))
}

// PropertyName converts an association or column name to its generated
// property spelling. Generated models keep the database's snake_case.
func PropertyName(name string) string {
	return strings.ToLower(name)
}

// AssociationNameForFK derives a belongs_to association name from its
// foreign key column: "client_id" -> "client", "parent_id" -> "parent".
func AssociationNameForFK(column string) string {
	if strings.HasSuffix(column, "_id") {
		return strings.TrimSuffix(column, "_id")
	}
	return column
}

// InverseHasManyName names the inferred inverse collection for a foreign
// key: jobs.client_id gives clients a "jobs" association.
func InverseHasManyName(owningTable string) string {
	return inflect.Pluralize(owningTable)
}

// FileSet holds the output filenames derived for one table.
type FileSet struct {
	Types    string // client.ts
	Active   string // client-active.ts
	Reactive string // client-reactive.ts
}

// FilesFor derives the three per-table output filenames.
func FilesFor(table string) FileSet {
	stem := KebabName(table)
	return FileSet{
		Types:    stem + ".ts",
		Active:   stem + "-active.ts",
		Reactive: stem + "-reactive.ts",
	}
}
