package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crewtrack/modelgen/schema"
)

// Property is one generated relationship property. All relationship
// properties are optional: associated rows may not be loaded.
type Property struct {
	Name string
	Type string
	Doc  string
}

// Import is one `import type { ... } from './file'` statement.
type Import struct {
	Types []string
	File  string
}

// Registration is one entry in the generated relationship-registration
// block.
type Registration struct {
	Name        string
	Kind        schema.RelationshipKind
	Model       string // empty for polymorphic belongs_to
	ForeignKey  string
	Through     string
	Polymorphic bool
	TypeField   string
	IDField     string
}

// ProcessedRelationships is everything the templates need for one table's
// associations.
type ProcessedRelationships struct {
	Properties    []Property
	Imports       []Import
	Exclusions    []string // property names excluded from create/update payloads
	Documentation []string
	Registrations []Registration
}

// RelationshipProcessor turns a table's association set into properties,
// imports, payload exclusions and registration statements. Imports are only
// emitted for types that appear in a concrete property position; a type
// mentioned in documentation alone never triggers an import, which is what
// keeps mutually-referencing tables from forming import cycles.
type RelationshipProcessor struct {
	rels *SchemaRelationships
}

func NewRelationshipProcessor(rels *SchemaRelationships) *RelationshipProcessor {
	return &RelationshipProcessor{rels: rels}
}

// Process resolves every association on owningTable.
func (p *RelationshipProcessor) Process(owningTable string) (*ProcessedRelationships, error) {
	out := &ProcessedRelationships{}
	imports := map[string]map[string]bool{} // file -> type names

	addImport := func(table string) {
		if table == owningTable {
			// Self-reference: the type is already in scope.
			return
		}
		file := "./" + schema.KebabName(table)
		if imports[file] == nil {
			imports[file] = map[string]bool{}
		}
		imports[file][schema.TypeName(table)] = true
	}

	for _, rel := range p.rels.For(owningTable) {
		switch rel.Kind {
		case schema.BelongsTo:
			p.processBelongsTo(owningTable, rel, out, addImport)
		case schema.HasOne, schema.HasMany:
			if err := p.processCollection(owningTable, rel, out, addImport); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("table %s: unknown relationship kind %q", owningTable, rel.Kind)
		}
		out.Exclusions = append(out.Exclusions, rel.Name)
	}

	files := make([]string, 0, len(imports))
	for file := range imports {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		types := make([]string, 0, len(imports[file]))
		for name := range imports[file] {
			types = append(types, name)
		}
		sort.Strings(types)
		out.Imports = append(out.Imports, Import{Types: types, File: file})
	}

	return out, nil
}

func (p *RelationshipProcessor) processBelongsTo(owningTable string, rel schema.Relationship, out *ProcessedRelationships, addImport func(string)) {
	if rel.Polymorphic {
		collectors := p.rels.CollectorsFor(rel.Interface)
		tsType := "unknown"
		if len(collectors) > 0 {
			names := make([]string, 0, len(collectors))
			for _, table := range collectors {
				names = append(names, schema.TypeName(table))
				addImport(table)
			}
			tsType = strings.Join(names, " | ")
		}
		out.Properties = append(out.Properties, Property{
			Name: rel.Name,
			Type: tsType,
			Doc:  fmt.Sprintf("polymorphic: resolved via %s_type / %s_id", rel.Interface, rel.Interface),
		})
		out.Registrations = append(out.Registrations, Registration{
			Name:        rel.Name,
			Kind:        schema.BelongsTo,
			Polymorphic: true,
			TypeField:   rel.Interface + "_type",
			IDField:     rel.Interface + "_id",
		})
		return
	}

	prop := Property{
		Name: rel.Name,
		Type: schema.TypeName(rel.TargetTable),
	}
	if rel.TargetTable == owningTable {
		prop.Doc = "self-referential association"
		out.Documentation = append(out.Documentation,
			fmt.Sprintf("%s references %s on the same table", rel.Name, rel.ForeignKey))
	} else {
		addImport(rel.TargetTable)
	}
	out.Properties = append(out.Properties, prop)
	out.Registrations = append(out.Registrations, Registration{
		Name:       rel.Name,
		Kind:       schema.BelongsTo,
		Model:      schema.ModelName(rel.TargetTable),
		ForeignKey: rel.ForeignKey,
	})
}

func (p *RelationshipProcessor) processCollection(owningTable string, rel schema.Relationship, out *ProcessedRelationships, addImport func(string)) error {
	var elem string
	var model string

	switch {
	case rel.Interface != "":
		// Polymorphic collection: element type is the union of every table
		// that points back through the interface.
		declarers := p.rels.DeclarersFor(rel.Interface)
		if len(declarers) == 0 {
			elem = "unknown"
		} else {
			names := make([]string, 0, len(declarers))
			for _, table := range declarers {
				names = append(names, schema.TypeName(table))
				addImport(table)
			}
			elem = strings.Join(names, " | ")
		}
	case rel.TargetTable != "":
		elem = schema.TypeName(rel.TargetTable)
		model = schema.ModelName(rel.TargetTable)
		if rel.TargetTable != owningTable {
			addImport(rel.TargetTable)
		} else {
			out.Documentation = append(out.Documentation,
				fmt.Sprintf("%s collects rows of the same table via %s", rel.Name, rel.ForeignKey))
		}
	default:
		return fmt.Errorf("table %s: association %s has no resolvable target", owningTable, rel.Name)
	}

	if rel.Through != "" {
		// The join association's type must be importable alongside the
		// target's.
		join, ok := p.resolveThrough(owningTable, rel.Through)
		if !ok {
			return fmt.Errorf("table %s: association %s: through %q does not name another association", owningTable, rel.Name, rel.Through)
		}
		if join.TargetTable != "" && join.TargetTable != owningTable {
			addImport(join.TargetTable)
		}
	}

	tsType := elem
	if rel.Kind == schema.HasMany {
		if strings.Contains(elem, "|") {
			tsType = "(" + elem + ")[]"
		} else {
			tsType = elem + "[]"
		}
	}

	out.Properties = append(out.Properties, Property{Name: rel.Name, Type: tsType})
	out.Registrations = append(out.Registrations, Registration{
		Name:       rel.Name,
		Kind:       rel.Kind,
		Model:      model,
		ForeignKey: rel.ForeignKey,
		Through:    rel.Through,
	})
	return nil
}

func (p *RelationshipProcessor) resolveThrough(owningTable, through string) (schema.Relationship, bool) {
	for _, rel := range p.rels.For(owningTable) {
		if rel.Name == through {
			return rel, true
		}
	}
	return schema.Relationship{}, false
}
