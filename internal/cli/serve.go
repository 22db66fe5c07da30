package cli

import (
	"learnhub_backend/internal/app"
	"learnhub_backend/pkg/logger"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.ForceMigrate = migrate
			defer logger.Log.Sync()

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			// release 模式默认不自动迁移，需要显式 --migrate
			if cfg.Server.Mode != "release" || cfg.ForceMigrate {
				if err := application.Migrate(); err != nil {
					logger.Log.Error("Database migration failed", zap.Error(err))
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return application.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	return cmd
}
