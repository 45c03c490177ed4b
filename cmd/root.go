package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "modelgen",
	Short: "Generate typed client-side data models from a Postgres schema",
	Long: `modelgen introspects your database and generates TypeScript data-access
models: a data interface, an active (CRUD) class and a reactive (query)
class per table, plus index and registry files.

Examples:

  modelgen generate
  modelgen generate --dry-run
  modelgen tables
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tablesCmd)
}
