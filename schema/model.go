package schema

// RelationshipKind classifies how two tables are associated.
type RelationshipKind string

const (
	BelongsTo RelationshipKind = "belongs_to"
	HasMany   RelationshipKind = "has_many"
	HasOne    RelationshipKind = "has_one"
)

// Column is a single introspected table column.
type Column struct {
	Name       string
	Type       string // native postgres data type (lowercased)
	Nullable   bool
	Default    *string
	Comment    string
	EnumValues []string // non-empty when the column is backed by an enum type
}

// IsEnum reports whether the column renders as a union of literal values.
func (c Column) IsEnum() bool {
	return len(c.EnumValues) > 0
}

// TableSchema is an immutable snapshot of one table. Column order matches
// ordinal position in the database so regeneration is stable across runs.
type TableSchema struct {
	Name    string
	Columns []Column
}

// Column returns the named column, if present.
func (t TableSchema) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the table declares the named column.
func (t TableSchema) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Relationship is one association on a table. For belongs_to the foreign key
// lives on the owning table; for has_many/has_one it lives on the target.
type Relationship struct {
	Kind        RelationshipKind
	Name        string // association name, e.g. "client" or "jobs"
	TargetTable string // referenced table; empty for polymorphic belongs_to
	ForeignKey  string
	Through     string // join association for has_many :through
	Polymorphic bool   // belongs_to with a (type, id) pair instead of a fixed target
	Interface   string // polymorphic interface name (the `as:` name)
}

// PolymorphicAssociation describes one polymorphic interface from the
// perspective of the table that collects it: the (type, id) column pair and
// every model allowed to appear in the type column.
type PolymorphicAssociation struct {
	Name         string // interface name, e.g. "notable"
	TypeField    string // e.g. "notable_type"
	IDField      string // e.g. "notable_id"
	AllowedTypes []string
}

// PatternKind names an inferred table-level convention.
type PatternKind string

const (
	SoftDeletion PatternKind = "soft_deletion"
	Positioning  PatternKind = "positioning"
	Enums        PatternKind = "enums"
)

// Pattern is an advisory annotation attached to a table. Absence of a
// pattern is never an error; patterns only decide whether extra generated
// code is emitted.
type Pattern struct {
	Kind   PatternKind
	Column string              // soft_deletion / positioning marker column
	Source string              // originating mechanism, e.g. "deleted_at column"
	Values map[string][]string // enums: column name -> ordered literal values
}

// ForeignKey is a raw foreign key constraint as introspected.
type ForeignKey struct {
	Table            string
	Column           string
	ReferencesTable  string
	ReferencesColumn string
}

// Snapshot is everything the introspector extracts in one pass. It is
// treated as read-only by every later stage.
type Snapshot struct {
	Tables      []TableSchema
	ForeignKeys []ForeignKey
}

// Table returns the named table schema, if present.
func (s *Snapshot) Table(name string) (TableSchema, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSchema{}, false
}

