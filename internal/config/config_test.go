package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigAppliesDefaultsAndUnits(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9000"
  mode: debug
database:
  driver: sqlite
  path: test.db
jwt:
  secret: dev-secret
  access_expire_minutes: 15
  refresh_expire_hours: 2
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port 9000, got %q", cfg.Server.Port)
	}
	if cfg.JWT.AccessExpire != 15*time.Minute {
		t.Fatalf("expected 15m access expiry, got %s", cfg.JWT.AccessExpire)
	}
	if cfg.JWT.RefreshExpire != 2*time.Hour {
		t.Fatalf("expected 2h refresh expiry, got %s", cfg.JWT.RefreshExpire)
	}
	if cfg.Gamification.LeaderboardSize != 50 {
		t.Fatalf("expected default leaderboard size 50, got %d", cfg.Gamification.LeaderboardSize)
	}
	if cfg.Redis.PoolSize != 50 || cfg.Redis.MinIdleConns != 5 {
		t.Fatalf("unexpected redis pool defaults: %+v", cfg.Redis)
	}
	if cfg.Log.File != "logs/app.log" || cfg.Log.MaxBackups != 5 {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Tracing.SampleRatio != 1 {
		t.Fatalf("expected sample ratio 1, got %v", cfg.Tracing.SampleRatio)
	}
	if cfg.Path() != dir {
		t.Fatalf("expected path %q, got %q", dir, cfg.Path())
	}
}

func TestLoadConfigRejectsWeakSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
database:
  driver: sqlite
jwt:
  secret: short
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected error for short secret in release mode")
	}
}

func TestLoadConfigRejectsJobsWithoutRedis(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
jobs:
  enabled: true
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected error when jobs are enabled without redis")
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: oracle
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
