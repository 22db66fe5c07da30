package configwatcher

import (
	"context"
	"learnhub_backend/internal/config"
	"learnhub_backend/pkg/logger"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type ConfigReloader func(cfg *config.Config)

// WatchConfig 监听配置目录，文件变更防抖 1 秒后重新加载，ctx 取消时退出
func WatchConfig(ctx context.Context, configDir string, reloader ConfigReloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	absDir, err := filepath.Abs(configDir)
	if err != nil {
		watcher.Close()
		return err
	}

	// 监听目录而不是文件，编辑器的原子替换也能收到事件
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		timer := time.NewTimer(time.Hour)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != "config.yaml" {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					timer.Reset(time.Second)
				}
			case <-timer.C:
				newCfg, err := config.LoadConfig(configDir)
				if err != nil {
					logger.Log.Error("Failed to reload config", zap.Error(err))
					continue
				}
				logger.Log.Info("Config reloaded", zap.String("dir", absDir))
				reloader(newCfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Error("Config watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
