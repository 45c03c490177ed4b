package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewtrack/modelgen/database"
	"github.com/crewtrack/modelgen/introspect"
	"github.com/crewtrack/modelgen/loader"
	"github.com/crewtrack/modelgen/utils"
	"github.com/crewtrack/modelgen/validator"
)

var (
	validateFile   string
	validateFormat string
)

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "associations", "a", "associations.yaml", "Associations file to validate")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the associations file against the database schema",
	Long: `Validate declared associations against the live database.

Checks that every declared model matches a table, foreign key columns and
target tables exist, and polymorphic declarers carry their type/id column
pair.

Examples:
  modelgen validate
  modelgen validate -a config/associations.yaml
  modelgen validate --format json
`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loader.LoadAssociations(validateFile)
		if err != nil {
			fmt.Println("❌ Loading associations:", err)
			os.Exit(1)
		}

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

		snap, err := introspect.New(pool).Extract(ctx)
		if err != nil {
			fmt.Println("❌ Introspecting database:", err)
			os.Exit(1)
		}

		res := validator.ValidateAssociations(cfg, snap)

		if validateFormat == "json" {
			out, _ := json.MarshalIndent(res, "", "  ")
			fmt.Println(string(out))
		} else {
			red := color.New(color.FgRed)
			yellow := color.New(color.FgYellow)
			for _, issue := range res.Errors {
				red.Printf("   ✗ %s %s: %s\n", issue.Table, issue.Field, issue.Message)
			}
			for _, issue := range res.Warnings {
				yellow.Printf("   ⚠ %s %s: %s\n", issue.Table, issue.Field, issue.Message)
			}
			if res.Valid() {
				fmt.Println("✅ Associations are valid")
			}
		}

		if !res.Valid() {
			os.Exit(1)
		}
	},
}
