package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphapulse/pulse/internal/storage"
	"github.com/alphapulse/pulse/pkg/config"
	"github.com/alphapulse/pulse/pkg/database"
	"github.com/alphapulse/pulse/pkg/logger"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Applies the database schema. All statements are idempotent, so
the command is safe to run repeatedly.

Example:
  go run ./cmd/pulse migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db.Pool); err != nil {
		return err
	}

	log.Info("Schema applied")
	fmt.Println("Schema applied")
	return nil
}
