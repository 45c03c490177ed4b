package generator

import (
	"github.com/crewtrack/modelgen/schema"
)

// PatternDetector inspects one table and reports an inferred convention, or
// nil when the convention is absent. Detectors are column-name heuristics,
// not tied to any one ORM's markers.
type PatternDetector func(table schema.TableSchema) *schema.Pattern

// softDeleteColumns are checked in order; the first match wins.
var softDeleteColumns = []string{"deleted_at", "discarded_at", "archived_at"}

// positionColumns mark a table whose rows carry an explicit ordering.
var positionColumns = []string{"position", "sort_order", "row_order"}

// DefaultDetectors is the standard detector chain.
var DefaultDetectors = []PatternDetector{
	DetectSoftDeletion,
	DetectPositioning,
	DetectEnums,
}

// DetectPatterns runs the detector chain over a table. A table with no
// detectable patterns yields an empty slice, never an error.
func DetectPatterns(table schema.TableSchema, detectors []PatternDetector) []schema.Pattern {
	var patterns []schema.Pattern
	for _, detect := range detectors {
		if p := detect(table); p != nil {
			patterns = append(patterns, *p)
		}
	}
	return patterns
}

// DetectSoftDeletion looks for a timestamp column conventionally used to
// flag rows as archived instead of removing them.
func DetectSoftDeletion(table schema.TableSchema) *schema.Pattern {
	for _, name := range softDeleteColumns {
		if col, ok := table.Column(name); ok {
			return &schema.Pattern{
				Kind:   schema.SoftDeletion,
				Column: col.Name,
				Source: col.Name + " column",
			}
		}
	}
	return nil
}

// DetectPositioning looks for an ordering column.
func DetectPositioning(table schema.TableSchema) *schema.Pattern {
	for _, name := range positionColumns {
		if col, ok := table.Column(name); ok {
			return &schema.Pattern{
				Kind:   schema.Positioning,
				Column: col.Name,
				Source: col.Name + " column",
			}
		}
	}
	return nil
}

// DetectEnums collects every enum-backed column on the table.
func DetectEnums(table schema.TableSchema) *schema.Pattern {
	values := map[string][]string{}
	for _, col := range table.Columns {
		if col.IsEnum() {
			values[col.Name] = col.EnumValues
		}
	}
	if len(values) == 0 {
		return nil
	}
	return &schema.Pattern{
		Kind:   schema.Enums,
		Source: "enum-backed columns",
		Values: values,
	}
}

// patternByKind returns the first pattern of the given kind, if present.
func patternByKind(patterns []schema.Pattern, kind schema.PatternKind) (schema.Pattern, bool) {
	for _, p := range patterns {
		if p.Kind == kind {
			return p, true
		}
	}
	return schema.Pattern{}, false
}
