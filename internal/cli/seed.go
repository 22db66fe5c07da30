package cli

import (
	"fmt"
	"learnhub_backend/internal/app"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/logger"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "从 YAML 课程目录导入课程、课时与试卷",
		Long:  "同名课程会被删除后重新创建，可重复执行。",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer f.Close()

			catalog, err := service.LoadCatalog(f)
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Migrate(); err != nil {
				return err
			}

			result, err := application.SeedService().Seed(catalog)
			if err != nil {
				return err
			}
			logger.Log.Info("Catalog seeded",
				zap.Int("courses", result.Courses),
				zap.Int("lessons", result.Lessons),
				zap.Int("exams", result.Exams),
				zap.Int("replaced", result.Replaced),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d courses, %d lessons, %d exams\n", result.Courses, result.Lessons, result.Exams)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "configs/catalog.yaml", "课程目录文件")
	return cmd
}
