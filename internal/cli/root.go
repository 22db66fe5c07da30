package cli

import (
	"learnhub_backend/internal/config"
	"learnhub_backend/pkg/logger"
	"os"

	"github.com/spf13/cobra"
)

var configDir string

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_DIR")
	if envConfig == "" {
		envConfig = "configs"
	}

	cmd := &cobra.Command{
		Use:          "learnhub",
		Short:        "LearnHub 在线学习平台后端",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configDir, "config", envConfig, "配置文件目录（包含 config.yaml）")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newRanksCmd())
	return cmd
}

// loadConfig 读取配置并初始化日志，每个子命令只调用一次
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, err
	}
	logger.InitLogger(cfg)
	return cfg, nil
}
