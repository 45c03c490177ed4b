package generator

import (
	"path"

	"github.com/crewtrack/modelgen/schema"
)

// GenerationContext bundles everything one table's generation pass needs.
// Contexts are passed by value through the pipeline: a stage returns a new
// context instead of mutating its input, so a context is never shared in a
// half-enriched state.
type GenerationContext struct {
	Table         schema.TableSchema
	Relationships []schema.Relationship
	Processed     *ProcessedRelationships
	Polymorphics  []schema.PolymorphicAssociation
	Patterns      []schema.Pattern

	ModelName    string
	TypeName     string
	ReactiveName string
	KebabName    string
	Files        schema.FileSet
	Loggable     bool
}

// OutputPaths returns the three per-table output paths under dir.
func (gc GenerationContext) OutputPaths(dir string) []string {
	return []string{
		path.Join(dir, gc.Files.Types),
		path.Join(dir, gc.Files.Active),
		path.Join(dir, gc.Files.Reactive),
	}
}

// Stage is one ordered step of the per-table pipeline.
type Stage interface {
	Name() string
	Run(gc GenerationContext) (GenerationContext, error)
}

// Pipeline runs stages in order, stopping at the first error.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Run(gc GenerationContext) (GenerationContext, error) {
	for _, stage := range p.stages {
		next, err := stage.Run(gc)
		if err != nil {
			return gc, err
		}
		gc = next
	}
	return gc, nil
}

// SchemaAnalysisStage derives naming, output filenames, patterns and the
// loggable capability flag.
type SchemaAnalysisStage struct {
	Detectors []PatternDetector
	Loggable  map[string]bool // model name -> declared loggable
}

func (s *SchemaAnalysisStage) Name() string { return "schema-analysis" }

func (s *SchemaAnalysisStage) Run(gc GenerationContext) (GenerationContext, error) {
	detectors := s.Detectors
	if detectors == nil {
		detectors = DefaultDetectors
	}
	gc.ModelName = schema.ModelName(gc.Table.Name)
	gc.TypeName = schema.TypeName(gc.Table.Name)
	gc.ReactiveName = schema.ReactiveName(gc.Table.Name)
	gc.KebabName = schema.KebabName(gc.Table.Name)
	gc.Files = schema.FilesFor(gc.Table.Name)
	gc.Patterns = DetectPatterns(gc.Table, detectors)
	gc.Loggable = s.Loggable[gc.ModelName]
	return gc, nil
}

// RelationshipStage attaches the table's association set, its processed
// form, and polymorphic metadata.
type RelationshipStage struct {
	Relationships *SchemaRelationships
	Processor     *RelationshipProcessor
	Analyzer      *PolymorphicAnalyzer
}

func (s *RelationshipStage) Name() string { return "relationships" }

func (s *RelationshipStage) Run(gc GenerationContext) (GenerationContext, error) {
	gc.Relationships = s.Relationships.For(gc.Table.Name)
	processed, err := s.Processor.Process(gc.Table.Name)
	if err != nil {
		return gc, err
	}
	gc.Processed = processed
	gc.Polymorphics = s.Analyzer.AssociationsForTable(gc.Table.Name)
	return gc, nil
}

// payloadExclusions are own-columns never present in create/update payloads.
var payloadExclusions = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// buildTypesContext assembles the context map for the data-type template.
func buildTypesContext(gc GenerationContext, mapper *TypeMapper) map[string]any {
	type columnEntry struct {
		Name    string
		Type    string
		Comment string
	}

	columns := make([]columnEntry, 0, len(gc.Table.Columns))
	for _, col := range gc.Table.Columns {
		columns = append(columns, columnEntry{
			Name:    schema.PropertyName(col.Name),
			Type:    mapper.Map(col),
			Comment: col.Comment,
		})
	}

	exclusions := []string{}
	for _, col := range gc.Table.Columns {
		if payloadExclusions[col.Name] {
			exclusions = append(exclusions, col.Name)
		}
	}
	if p, ok := patternByKind(gc.Patterns, schema.SoftDeletion); ok && !payloadExclusions[p.Column] {
		exclusions = append(exclusions, p.Column)
	}
	exclusions = append(exclusions, gc.Processed.Exclusions...)

	return map[string]any{
		"Table":         gc.Table.Name,
		"TypeName":      gc.TypeName,
		"ModelName":     gc.ModelName,
		"Imports":       gc.Processed.Imports,
		"Columns":       columns,
		"Relationships": gc.Processed.Properties,
		"Docs":          gc.Processed.Documentation,
		"Exclusions":    exclusions,
	}
}

// buildActiveContext assembles the context map for the active-model template.
func buildActiveContext(gc GenerationContext) map[string]any {
	type defaultEntry struct {
		Name    string
		Literal string
	}

	var defaults []defaultEntry
	for _, col := range gc.Table.Columns {
		if col.Default == nil || payloadExclusions[col.Name] {
			continue
		}
		if literal, ok := ConvertDefault(*col.Default); ok {
			defaults = append(defaults, defaultEntry{Name: schema.PropertyName(col.Name), Literal: literal})
		}
	}

	ctx := map[string]any{
		"Table":         gc.Table.Name,
		"ModelName":     gc.ModelName,
		"TypeName":      gc.TypeName,
		"KebabName":     gc.KebabName,
		"Defaults":      defaults,
		"Registrations": gc.Processed.Registrations,
		"Polymorphics":  gc.Polymorphics,
		"Loggable":      gc.Loggable,
		"SoftDelete":    "",
		"Position":      "",
	}
	if p, ok := patternByKind(gc.Patterns, schema.SoftDeletion); ok {
		ctx["SoftDelete"] = p.Column
	}
	if p, ok := patternByKind(gc.Patterns, schema.Positioning); ok {
		ctx["Position"] = p.Column
	}
	return ctx
}

// buildReactiveContext assembles the context map for the reactive-model
// template.
func buildReactiveContext(gc GenerationContext) map[string]any {
	return map[string]any{
		"Table":        gc.Table.Name,
		"ModelName":    gc.ModelName,
		"TypeName":     gc.TypeName,
		"ReactiveName": gc.ReactiveName,
		"KebabName":    gc.KebabName,
	}
}
