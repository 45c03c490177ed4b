package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewtrack/modelgen/database"
	"github.com/crewtrack/modelgen/generator"
	"github.com/crewtrack/modelgen/introspect"
	"github.com/crewtrack/modelgen/loader"
	"github.com/crewtrack/modelgen/logger"
	"github.com/crewtrack/modelgen/utils"
)

var (
	outputDir        string
	onlyTable        string
	excludeTables    []string
	associationsFile string
	dryRun           bool
	force            bool
	strict           bool
	noFormat         bool
	workers          int
	verbose          bool
)

func init() {
	generateCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "src/lib/models", "Output directory for generated models")
	generateCmd.Flags().StringVarP(&onlyTable, "table", "t", "", "Generate only this table")
	generateCmd.Flags().StringSliceVar(&excludeTables, "exclude-tables", nil, "Tables to skip")
	generateCmd.Flags().StringVarP(&associationsFile, "associations", "a", "associations.yaml", "Declared associations file")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report intended files without writing anything")
	generateCmd.Flags().BoolVar(&force, "force", false, "Rewrite files even when content is unchanged")
	generateCmd.Flags().BoolVar(&strict, "strict", true, "Treat any per-table failure as a run failure")
	generateCmd.Flags().BoolVar(&noFormat, "no-format", false, "Skip the batch prettier pass on changed files")
	generateCmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = number of CPUs)")
	generateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate TypeScript models from the database schema",
	Long: `Generate TypeScript models for every table in the database.

Each table produces three files (data interface, active model, reactive
model), then an index file and the loggable-models registry are rebuilt.
Unchanged files are never rewritten, so regeneration against an unchanged
schema touches nothing.

Examples:
  modelgen generate                          # All tables
  modelgen generate --dry-run                # Show what would be written
  modelgen generate --table clients          # One table only
  modelgen generate --exclude-tables=sessions,audit_rows
  modelgen generate -o web/src/lib/models
`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		log := logger.New(verbose)

		utils.LoadEnv()
		url, err := utils.DatabaseURL()
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		pool, err := database.Connect(ctx, url)
		if err != nil {
			fmt.Println("❌ Connecting to database:", err)
			os.Exit(1)
		}
		defer pool.Close()

		cfg, err := loader.LoadAssociations(associationsFile)
		if err != nil {
			fmt.Println("❌ Loading associations:", err)
			os.Exit(1)
		}

		var formatter []string
		if !noFormat {
			formatter = []string{"prettier", "--write"}
		}

		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)

		coord := generator.NewCoordinator(introspect.New(pool), generator.Options{
			OutputDir:     outputDir,
			OnlyTable:     onlyTable,
			ExcludeTables: excludeTables,
			DryRun:        dryRun,
			Force:         force,
			Strict:        strict,
			Workers:       workers,
			Formatter:     formatter,
			Associations:  cfg,
			Logger:        log,
			Progress: func(res generator.Result) {
				if res.Err != nil {
					red.Printf("   ✗ %s: %v\n", res.Table, res.Err)
				} else {
					green.Printf("   ✓ %s → %s\n", res.Table, res.ModelName)
				}
			},
		})

		report, err := coord.Run(ctx)
		if err != nil {
			fmt.Println("❌ Generation failed:", err)
			os.Exit(1)
		}

		printSummary(report)

		if !report.Success(strict) {
			os.Exit(1)
		}
	},
}

func printSummary(report *generator.Report) {
	if report.DryRun {
		fmt.Println("\n================ DRY RUN: Generation Preview ================")
		for _, p := range report.Planned {
			fmt.Println("   would write:", p)
		}
		fmt.Println("=============================================================")
		fmt.Println("(Dry run only. No files were written.)")
	}

	stats := report.Stats
	fmt.Printf("\n✅ Generated %d models from %d tables in %s\n",
		stats.ModelsGenerated, stats.TablesProcessed, stats.Duration.Round(time.Millisecond))
	fmt.Printf("   Files written: %d, unchanged: %d, formatted: %d\n",
		report.Files.Created, report.Files.Identical, report.Files.Formatted)

	if stats.UnmappedTypes > 0 {
		fmt.Printf("⚠️  %d column(s) fell back to 'any' (unmapped native types)\n", stats.UnmappedTypes)
	}

	if report.Files.Errors > 0 {
		fmt.Printf("❌ %d file(s) could not be written\n", report.Files.Errors)
	}

	if len(report.Skipped) > 0 {
		fmt.Println("\n🕒 Skipped tables:")
		for _, s := range report.Skipped {
			fmt.Printf("   - %s: %s\n", s.Table, s.Reason)
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Println("\n❌ Failed tables:")
		for _, f := range failed {
			fmt.Printf("   - %s: %v\n", f.Table, f.Err)
		}
	}

	var b strings.Builder
	for i, res := range report.Results {
		if res.Err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(res.ModelName)
		if i > 20 {
			b.WriteString(", …")
			break
		}
	}
	if b.Len() > 0 {
		fmt.Println("\n📦 Models:", b.String())
	}
}
