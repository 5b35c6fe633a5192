package cmd

import (
	"fmt"

	"postboard/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Run:   migrate,
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}

func migrate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if err := cfg.Validate(); err != nil {
		outputErrorAndExit("Invalid config: %v", err)
	}
	if cfg.Memory {
		outputErrorAndExit("Nothing to migrate in memory mode")
	}

	err := db.Connect(db.ConnectOpts{
		Url:          cfg.DatabaseUrl(),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		outputErrorAndExit("Error connecting to database: %v", err)
	}
	defer db.Close()

	err = db.MigrationsUp(cfg.MigrationsDir)
	if err != nil {
		outputErrorAndExit("Error running migrations: %v", err)
	}

	fmt.Println("✅ " + color.New(color.Bold).Sprint("Migrations are up to date"))
}
