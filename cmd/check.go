package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewtrack/modelgen/database"
	"github.com/crewtrack/modelgen/introspect"
	"github.com/crewtrack/modelgen/utils"
)

var checkTimeout time.Duration

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "Timeout for the schema check")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check database connectivity and schema reachability",
	Long: `Check that the database is reachable and its schema can be introspected.

Examples:
  modelgen check
  modelgen check --timeout 5s
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkSchema(); err != nil {
			fmt.Printf("❌ Schema check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Schema check completed successfully")
	},
}

func checkSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	utils.LoadEnv()
	url, err := utils.DatabaseURL()
	if err != nil {
		return err
	}

	pool, err := database.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer pool.Close()

	snap, err := introspect.New(pool).WithTimeout(checkTimeout).Extract(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("📊 Found %d tables, %d foreign keys\n", len(snap.Tables), len(snap.ForeignKeys))
	return nil
}
