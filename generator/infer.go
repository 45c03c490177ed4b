package generator

import (
	"sort"

	"github.com/go-openapi/inflect"

	"github.com/crewtrack/modelgen/loader"
	"github.com/crewtrack/modelgen/schema"
)

// SchemaRelationships is the association set for every table in a snapshot,
// merged from foreign-key inference and declared associations. Declarations
// always win over inference when both cover the same foreign key or name.
type SchemaRelationships struct {
	byTable map[string][]schema.Relationship

	// declarers: polymorphic interface -> tables declaring
	// `belongs_to <interface>, polymorphic: true`.
	declarers map[string][]string

	// collectors: polymorphic interface -> tables declaring
	// `has_many/has_one ..., as: <interface>`.
	collectors map[string][]string
}

// BuildRelationships derives each table's associations:
//
//   - every foreign key yields a belongs_to on the owning table and an
//     inverse has_many on the referenced table
//   - declared associations add has_one, :through, renames and polymorphic
//     interfaces on top
func BuildRelationships(snap *schema.Snapshot, cfg *loader.Config) *SchemaRelationships {
	sr := &SchemaRelationships{
		byTable:    map[string][]schema.Relationship{},
		declarers:  map[string][]string{},
		collectors: map[string][]string{},
	}

	declared := map[string]map[string]bool{} // table -> association name
	declaredFK := map[string]map[string]bool{}

	note := func(table, name, fk string) {
		if declared[table] == nil {
			declared[table] = map[string]bool{}
			declaredFK[table] = map[string]bool{}
		}
		declared[table][name] = true
		if fk != "" {
			declaredFK[table][fk] = true
		}
	}

	for _, table := range snap.Tables {
		mc, ok := cfg.ModelFor(table.Name)
		if !ok {
			continue
		}
		for _, a := range mc.BelongsTo {
			rel := schema.Relationship{
				Kind:        schema.BelongsTo,
				Name:        a.Name,
				TargetTable: a.Table,
				ForeignKey:  a.ForeignKey,
				Polymorphic: a.Polymorphic,
			}
			if rel.ForeignKey == "" {
				rel.ForeignKey = a.Name + "_id"
			}
			if rel.Polymorphic {
				rel.Interface = a.Name
				rel.TargetTable = ""
				sr.declarers[rel.Interface] = append(sr.declarers[rel.Interface], table.Name)
			} else if rel.TargetTable == "" {
				rel.TargetTable = inflect.Pluralize(a.Name)
			}
			sr.byTable[table.Name] = append(sr.byTable[table.Name], rel)
			note(table.Name, rel.Name, rel.ForeignKey)
		}
		for _, a := range mc.HasMany {
			sr.addCollection(schema.HasMany, table.Name, a)
			note(table.Name, a.Name, "")
		}
		for _, a := range mc.HasOne {
			sr.addCollection(schema.HasOne, table.Name, a)
			note(table.Name, a.Name, "")
		}
	}

	// Foreign-key inference, skipping anything a declaration already covers.
	// A table with several foreign keys to the same target (client_id,
	// billing_client_id) still yields exactly one inverse collection: the
	// inverse is keyed by name, and the first foreign key claims it.
	inferredInverse := map[string]map[string]bool{}
	for _, fk := range snap.ForeignKeys {
		name := schema.AssociationNameForFK(fk.Column)
		if !declared[fk.Table][name] && !declaredFK[fk.Table][fk.Column] {
			sr.byTable[fk.Table] = append(sr.byTable[fk.Table], schema.Relationship{
				Kind:        schema.BelongsTo,
				Name:        name,
				TargetTable: fk.ReferencesTable,
				ForeignKey:  fk.Column,
			})
		}

		inverse := schema.InverseHasManyName(fk.Table)
		if !declared[fk.ReferencesTable][inverse] && !inferredInverse[fk.ReferencesTable][inverse] {
			if inferredInverse[fk.ReferencesTable] == nil {
				inferredInverse[fk.ReferencesTable] = map[string]bool{}
			}
			inferredInverse[fk.ReferencesTable][inverse] = true
			sr.byTable[fk.ReferencesTable] = append(sr.byTable[fk.ReferencesTable], schema.Relationship{
				Kind:        schema.HasMany,
				Name:        inverse,
				TargetTable: fk.Table,
				ForeignKey:  fk.Column,
			})
		}
	}

	for table := range sr.byTable {
		sortRelationships(sr.byTable[table])
	}
	for _, m := range []map[string][]string{sr.declarers, sr.collectors} {
		for k := range m {
			sort.Strings(m[k])
		}
	}

	return sr
}

func (sr *SchemaRelationships) addCollection(kind schema.RelationshipKind, table string, a loader.Association) {
	rel := schema.Relationship{
		Kind:        kind,
		Name:        a.Name,
		TargetTable: a.Table,
		ForeignKey:  a.ForeignKey,
		Through:     a.Through,
		Interface:   a.As,
	}
	if rel.TargetTable == "" && rel.Interface == "" {
		rel.TargetTable = inflect.Pluralize(inflect.Singularize(a.Name))
	}
	if rel.ForeignKey == "" {
		if rel.Interface != "" {
			rel.ForeignKey = rel.Interface + "_id"
		} else if rel.Through == "" {
			rel.ForeignKey = inflect.Singularize(table) + "_id"
		}
	}
	if rel.Interface != "" {
		sr.collectors[rel.Interface] = append(sr.collectors[rel.Interface], table)
	}
	sr.byTable[table] = append(sr.byTable[table], rel)
}

// For returns the association set for a table, ordered deterministically.
func (sr *SchemaRelationships) For(table string) []schema.Relationship {
	return sr.byTable[table]
}

// DeclarersFor returns the tables carrying the (type, id) pair of a
// polymorphic interface, sorted.
func (sr *SchemaRelationships) DeclarersFor(iface string) []string {
	return sr.declarers[iface]
}

// CollectorsFor returns the tables collecting a polymorphic interface via
// has_many/has_one `as:`, sorted.
func (sr *SchemaRelationships) CollectorsFor(iface string) []string {
	return sr.collectors[iface]
}

var kindRank = map[schema.RelationshipKind]int{
	schema.BelongsTo: 0,
	schema.HasOne:    1,
	schema.HasMany:   2,
}

func sortRelationships(rels []schema.Relationship) {
	sort.SliceStable(rels, func(i, j int) bool {
		if kindRank[rels[i].Kind] != kindRank[rels[j].Kind] {
			return kindRank[rels[i].Kind] < kindRank[rels[j].Kind]
		}
		return rels[i].Name < rels[j].Name
	})
}
