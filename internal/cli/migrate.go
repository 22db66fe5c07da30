package cli

import (
	"learnhub_backend/internal/app"
	"learnhub_backend/pkg/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移后退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Migrate(); err != nil {
				return err
			}
			logger.Log.Info("Database migration completed")
			return nil
		},
	}
}
