package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/lms-quiz-service/internal/config"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-quiz-service/pkg"
)

// newMigrateCmd applies the schema. The users table is only managed when
// identities are local (jwt provider).
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			withUsers := cfg.AuthProvider == config.AuthProviderJWT
			if err := postgres.Migrate(db, withUsers); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}

			logger.Info("Migrations applied", "with_users", withUsers)
			return nil
		},
	}
}
