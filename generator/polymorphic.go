package generator

import (
	"fmt"
	"sort"

	"github.com/crewtrack/modelgen/schema"
)

// PolymorphicAnalyzer derives declarative polymorphic metadata. For every
// `has_many ..., as: X` on a table it enumerates all models declaring
// `belongs_to X, polymorphic: true` — not just the first found — and emits
// one registration per interface. Adding a new polymorphic target later only
// grows the allowed-types list; the generated structure does not change.
type PolymorphicAnalyzer struct {
	rels *SchemaRelationships
}

func NewPolymorphicAnalyzer(rels *SchemaRelationships) *PolymorphicAnalyzer {
	return &PolymorphicAnalyzer{rels: rels}
}

// AssociationsForTable returns the polymorphic associations collected by the
// named table, one per interface, with allowed types deduplicated and sorted.
func (a *PolymorphicAnalyzer) AssociationsForTable(table string) []schema.PolymorphicAssociation {
	seen := map[string]bool{}
	var assocs []schema.PolymorphicAssociation

	for _, rel := range a.rels.For(table) {
		if rel.Interface == "" || rel.Kind == schema.BelongsTo {
			continue
		}
		if seen[rel.Interface] {
			continue
		}
		seen[rel.Interface] = true

		allowed := map[string]bool{}
		for _, declarer := range a.rels.DeclarersFor(rel.Interface) {
			allowed[schema.ModelName(declarer)] = true
		}
		types := make([]string, 0, len(allowed))
		for name := range allowed {
			types = append(types, name)
		}
		sort.Strings(types)

		assocs = append(assocs, schema.PolymorphicAssociation{
			Name:         rel.Interface,
			TypeField:    rel.Interface + "_type",
			IDField:      rel.Interface + "_id",
			AllowedTypes: types,
		})
	}

	sort.Slice(assocs, func(i, j int) bool { return assocs[i].Name < assocs[j].Name })
	return assocs
}

// Validate checks the polymorphic invariant: every declarer of an interface
// must carry both the type and id columns.
func (a *PolymorphicAnalyzer) Validate(snap *schema.Snapshot, assoc schema.PolymorphicAssociation) error {
	for _, declarer := range a.rels.DeclarersFor(assoc.Name) {
		table, ok := snap.Table(declarer)
		if !ok {
			continue
		}
		if !table.HasColumn(assoc.TypeField) || !table.HasColumn(assoc.IDField) {
			return fmt.Errorf("table %s declares polymorphic %s but is missing %s/%s columns",
				declarer, assoc.Name, assoc.TypeField, assoc.IDField)
		}
	}
	return nil
}
