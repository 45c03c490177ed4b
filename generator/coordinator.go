package generator

import (
	"context"
	"path"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/crewtrack/modelgen/loader"
	"github.com/crewtrack/modelgen/schema"
	"github.com/crewtrack/modelgen/validator"
)

// SchemaSource is the read-only schema provider the coordinator runs
// against. The postgres introspector implements it; tests substitute fixture
// snapshots.
type SchemaSource interface {
	Extract(ctx context.Context) (*schema.Snapshot, error)
}

// internalTables are bookkeeping tables that are never generated, regardless
// of other filters.
var internalTables = map[string]bool{
	"schema_migrations":    true,
	"ar_internal_metadata": true,
}

// Options is the complete, explicit configuration for one run. Components
// never read configuration from ambient globals.
type Options struct {
	OutputDir     string
	OnlyTable     string
	ExcludeTables []string
	DryRun        bool
	Force         bool
	Strict        bool // per-table failures fail the run
	Workers       int
	Formatter     []string
	Associations  *loader.Config
	Detectors     []PatternDetector
	Templates     map[string]string // overrides the built-in set when non-nil
	Logger        zerolog.Logger
	Progress      func(Result) // optional per-table progress callback
}

// Result is one table's outcome: either the files generated (or, in
// dry-run, the files that would be generated) or the error that stopped it.
type Result struct {
	Table     string
	ModelName string
	KebabName string
	Files     []string
	Err       error
}

// SkippedTable records a table excluded by filtering.
type SkippedTable struct {
	Table  string
	Reason string
}

// RunStatistics aggregates one run for the operator-facing summary.
type RunStatistics struct {
	TablesProcessed int
	ModelsGenerated int
	FilesWritten    int
	FilesIdentical  int
	Errors          int
	UnmappedTypes   int
	Duration        time.Duration
}

// Report is the full outcome of one run.
type Report struct {
	Results []Result
	Skipped []SkippedTable
	Planned []string // every buffered output path, sorted
	Stats   RunStatistics
	Files   FileStats
	DryRun  bool
}

// Failed returns the per-table failures.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Success reports whether the run should be treated as successful. Per-table
// failures are tolerated unless strict was set; a failed file write never is,
// since the output directory no longer matches the report.
func (r *Report) Success(strict bool) bool {
	if r.Files.Errors > 0 {
		return false
	}
	if strict {
		return r.Stats.Errors == 0
	}
	return true
}

// Coordinator drives a generation run: extract, filter, per-table pipeline
// on a worker pool, batch flush, post-processing, report.
type Coordinator struct {
	source   SchemaSource
	opts     Options
	renderer *Renderer
	files    *FileManager
	mapper   *TypeMapper
	log      zerolog.Logger

	progressMu sync.Mutex
}

func NewCoordinator(source SchemaSource, opts Options) *Coordinator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	renderer := NewRenderer()
	if opts.Templates != nil {
		renderer = NewRendererWithTemplates(opts.Templates)
	}
	log := opts.Logger
	return &Coordinator{
		source:   source,
		opts:     opts,
		renderer: renderer,
		files:    NewFileManager(log).WithFormatter(opts.Formatter).WithForce(opts.Force),
		mapper:   NewTypeMapper(log),
		log:      log,
	}
}

// Run executes one full generation pass. Only schema extraction failures
// return an error; everything per-table lands in the report.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	snap, err := c.source.Extract(ctx)
	if err != nil {
		return nil, err
	}

	tables, skipped := c.filterTables(snap.Tables)
	cfg := c.opts.Associations
	if cfg == nil {
		cfg = &loader.Config{}
	}

	// Advisory pre-flight: a broken declaration surfaces here instead of as
	// a confusing per-table template error later.
	for _, issue := range validator.ValidateAssociations(cfg, snap).Errors {
		c.log.Warn().Str("table", issue.Table).Str("field", issue.Field).Msg(issue.Message)
	}

	rels := BuildRelationships(snap, cfg)
	loggable := map[string]bool{}
	for _, name := range cfg.LoggableModels() {
		loggable[name] = true
	}

	pipeline := NewPipeline(
		&SchemaAnalysisStage{Detectors: c.opts.Detectors, Loggable: loggable},
		&RelationshipStage{
			Relationships: rels,
			Processor:     NewRelationshipProcessor(rels),
			Analyzer:      NewPolymorphicAnalyzer(rels),
		},
	)

	// One task per table. Tables are independent; the only shared state is
	// the write buffer and the template cache, both safe for concurrent use.
	results := make([]Result, len(tables))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.opts.Workers)
	for i, table := range tables {
		i, table := i, table
		eg.Go(func() error {
			select {
			case <-egctx.Done():
				return egctx.Err()
			default:
			}
			results[i] = c.processTable(pipeline, table)
			c.reportProgress(results[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		// Aborted before the flush barrier: no output files are touched.
		c.files.Discard()
		return nil, err
	}

	report := &Report{Results: results, Skipped: skipped, DryRun: c.opts.DryRun}
	c.postProcess(report, loggable)

	// The buffered set is the run's complete output surface; dry-run and
	// real runs diverge only in whether it is flushed.
	report.Planned = c.files.Pending()

	if c.opts.DryRun {
		c.files.Discard()
	} else {
		stats, err := c.files.ProcessBatch()
		if err != nil {
			c.log.Error().Err(err).Msg("batch write failed")
		}
		report.Files = stats
	}

	c.aggregate(report, time.Since(start))
	return report, nil
}

func (c *Coordinator) filterTables(all []schema.TableSchema) ([]schema.TableSchema, []SkippedTable) {
	excluded := map[string]bool{}
	for _, name := range c.opts.ExcludeTables {
		excluded[name] = true
	}

	var tables []schema.TableSchema
	var skipped []SkippedTable
	for _, t := range all {
		switch {
		case internalTables[t.Name]:
			skipped = append(skipped, SkippedTable{Table: t.Name, Reason: "internal bookkeeping table"})
		case c.opts.OnlyTable != "" && t.Name != c.opts.OnlyTable:
			skipped = append(skipped, SkippedTable{Table: t.Name, Reason: "filtered by --table"})
		case excluded[t.Name]:
			skipped = append(skipped, SkippedTable{Table: t.Name, Reason: "filtered by --exclude-tables"})
		default:
			tables = append(tables, t)
		}
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, skipped
}

// processTable runs one table through the pipeline and buffers its three
// rendered files. All failures are caught here and converted into the
// table's Result.
func (c *Coordinator) processTable(pipeline *Pipeline, table schema.TableSchema) Result {
	result := Result{Table: table.Name}

	gc, err := pipeline.Run(GenerationContext{Table: table})
	if err != nil {
		result.Err = err
		return result
	}
	result.ModelName = gc.ModelName
	result.KebabName = gc.KebabName

	paths := gc.OutputPaths(c.opts.OutputDir)
	renders := []struct {
		template string
		path     string
		data     map[string]any
	}{
		{"datatype", paths[0], buildTypesContext(gc, c.mapper)},
		{"active", paths[1], buildActiveContext(gc)},
		{"reactive", paths[2], buildReactiveContext(gc)},
	}

	for _, r := range renders {
		body, err := c.renderer.Render(r.template, r.data)
		if err != nil {
			// Drop anything this table already buffered: a failed table
			// must not leave partial output behind.
			c.files.Remove(result.Files...)
			result.Files = nil
			result.Err = err
			return result
		}
		result.Files = append(result.Files, r.path)
		if err := c.files.Write(r.path, []byte(body), true); err != nil {
			result.Err = err
			return result
		}
	}

	return result
}

// postProcess buffers the index and loggable-registry files from the
// successful results. Registry failure is advisory and never blocks model
// generation.
func (c *Coordinator) postProcess(report *Report, loggable map[string]bool) {
	type indexEntry struct {
		Kebab    string
		Model    string
		Reactive string
	}
	type loggableEntry struct {
		Model string
		Table string
	}

	var entries []indexEntry
	var loggables []loggableEntry
	for _, res := range report.Results {
		if res.Err != nil {
			continue
		}
		entries = append(entries, indexEntry{
			Kebab:    res.KebabName,
			Model:    res.ModelName,
			Reactive: "Reactive" + res.ModelName,
		})
		if loggable[res.ModelName] {
			loggables = append(loggables, loggableEntry{Model: res.ModelName, Table: res.Table})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Model < entries[j].Model })
	sort.Slice(loggables, func(i, j int) bool { return loggables[i].Model < loggables[j].Model })

	if len(entries) > 0 {
		body, err := c.renderer.Render("index", map[string]any{"Models": entries})
		if err != nil {
			c.log.Error().Err(err).Msg("index generation failed")
		} else if err := c.files.Write(path.Join(c.opts.OutputDir, "index.ts"), []byte(body), true); err != nil {
			c.log.Error().Err(err).Msg("index write failed")
		}
	}

	body, err := c.renderer.Render("loggable", map[string]any{"Models": loggables})
	if err != nil {
		c.log.Warn().Err(err).Msg("loggable registry generation failed, continuing")
		return
	}
	if err := c.files.Write(path.Join(c.opts.OutputDir, "loggable-models.ts"), []byte(body), true); err != nil {
		c.log.Warn().Err(err).Msg("loggable registry write failed, continuing")
	}
}

func (c *Coordinator) aggregate(report *Report, elapsed time.Duration) {
	report.Stats.TablesProcessed = len(report.Results)
	for _, res := range report.Results {
		if res.Err != nil {
			report.Stats.Errors++
		} else {
			report.Stats.ModelsGenerated++
		}
	}
	report.Stats.FilesWritten = report.Files.Created
	report.Stats.FilesIdentical = report.Files.Identical
	report.Stats.UnmappedTypes = c.mapper.Unmapped
	report.Stats.Duration = elapsed
}

func (c *Coordinator) reportProgress(res Result) {
	if c.opts.Progress == nil {
		return
	}
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	c.opts.Progress(res)
}
