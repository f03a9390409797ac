package cmd

import (
	"fmt"

	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var migrateDownSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply pending database migrations.

With --down N the last N migrations are rolled back instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		logger := config.NewLogger(cfg.Logging)

		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if migrateDownSteps > 0 {
			if err := sqlite.MigrateDown(db, migrateDownSteps); err != nil {
				return fmt.Errorf("roll back migrations: %w", err)
			}
			logger.Info().Int("steps", migrateDownSteps).Msg("migrations rolled back")
			return nil
		}

		if err := sqlite.MigrateUp(db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Str("path", cfg.Database.Path).Msg("migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateDownSteps, "down", 0, "roll back this many migrations instead of applying")
}
