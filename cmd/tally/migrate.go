package main

import (
	"tally/internal/common"
	"tally/internal/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Bring the ledger database up to date with the schema scripts in the
migrations directory. Scripts apply in filename order and each one is
recorded in the migration ledger when it succeeds. If the database file
already exists, a backup copy is taken before anything is applied.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbPath, err := databasePath()
	if err != nil {
		return err
	}
	migrationsDir := expandPath(viper.GetString("migrations.dir"))

	common.LogInfo("running migrations", common.Fields{
		"database":   dbPath,
		"migrations": migrationsDir,
	})

	applied, err := storage.ApplyMigrations(cmd.Context(), dbPath, migrationsDir)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		cmd.Println("Schema already up to date.")
		return nil
	}

	cmd.Println("Applied migrations:")
	for _, name := range applied {
		cmd.Printf("  - %s\n", name)
	}
	return nil
}
