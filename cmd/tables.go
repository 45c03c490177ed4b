package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crewtrack/modelgen/database"
	"github.com/crewtrack/modelgen/introspect"
	"github.com/crewtrack/modelgen/schema"
	"github.com/crewtrack/modelgen/utils"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables that would be generated",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

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

		fmt.Println("📦 Candidate tables:")
		for _, t := range snap.Tables {
			fmt.Printf("   - %s → %s (%d columns)\n", t.Name, schema.ModelName(t.Name), len(t.Columns))
		}
	},
}
