package generator

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crewtrack/modelgen/schema"
)

// nativeTypes is the fixed dispatch table from postgres data types to
// TypeScript type expressions.
var nativeTypes = map[string]string{
	"character varying":           "string",
	"varchar":                     "string",
	"character":                   "string",
	"text":                        "string",
	"citext":                      "string",
	"string":                      "string",
	"uuid":                        "string",
	"integer":                     "number",
	"int":                         "number",
	"smallint":                    "number",
	"bigint":                      "number",
	"decimal":                     "number",
	"numeric":                     "number",
	"real":                        "number",
	"float":                       "number",
	"double precision":            "number",
	"boolean":                     "boolean",
	"bool":                        "boolean",
	"date":                        "string",
	"time":                        "string",
	"time without time zone":      "string",
	"datetime":                    "string",
	"timestamp":                   "string",
	"timestamp without time zone": "string",
	"timestamp with time zone":    "string",
	"timestamptz":                 "string",
	"json":                        "any",
	"jsonb":                       "any",
	"bytea":                       "Uint8Array",
	"binary":                      "Uint8Array",
}

// TypeMapper maps native column types to TypeScript type expressions. The
// mapping is total: unrecognized types fall back to "any" with a warning
// rather than failing the table.
type TypeMapper struct {
	log zerolog.Logger

	// Unmapped counts fallback hits, reported in the run summary.
	Unmapped int
}

func NewTypeMapper(log zerolog.Logger) *TypeMapper {
	return &TypeMapper{log: log}
}

// Map returns the TypeScript type for a column. Enum metadata always wins
// over the native type. Nullable columns widen to `T | null`.
func (m *TypeMapper) Map(col schema.Column) string {
	base := m.baseType(col)
	if col.Nullable {
		return base + " | null"
	}
	return base
}

func (m *TypeMapper) baseType(col schema.Column) string {
	if col.IsEnum() {
		literals := make([]string, len(col.EnumValues))
		for i, v := range col.EnumValues {
			literals[i] = fmt.Sprintf("'%s'", v)
		}
		return strings.Join(literals, " | ")
	}

	if ts, ok := nativeTypes[strings.ToLower(col.Type)]; ok {
		return ts
	}

	m.Unmapped++
	m.log.Warn().
		Str("column", col.Name).
		Str("type", col.Type).
		Msg("no type mapping, falling back to any")
	return "any"
}
