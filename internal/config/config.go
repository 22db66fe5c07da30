package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Redis        RedisConfig
	Tracing      TracingConfig      `mapstructure:"tracing"`
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Jobs         JobsConfig         `mapstructure:"jobs"`
	Log          LogConfig          `mapstructure:"log"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`

	path string
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string // mysql / postgres / sqlite
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
	Path      string // sqlite 文件路径
}

type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`
	AccessExpire  time.Duration `mapstructure:"access_expire_minutes"`
	RefreshExpire time.Duration `mapstructure:"refresh_expire_hours"`
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type GamificationConfig struct {
	LeaderboardSize         int `mapstructure:"leaderboard_size"`
	LeaderboardCacheSeconds int `mapstructure:"leaderboard_cache_seconds"`
	RankRecomputeSeconds    int `mapstructure:"rank_recompute_seconds"`
	RankDebounceSeconds     int `mapstructure:"rank_debounce_seconds"`
}

func (g GamificationConfig) LeaderboardTTL() time.Duration {
	return time.Duration(g.LeaderboardCacheSeconds) * time.Second
}

func (g GamificationConfig) RankInterval() time.Duration {
	return time.Duration(g.RankRecomputeSeconds) * time.Second
}

func (g GamificationConfig) RankDebounce() time.Duration {
	return time.Duration(g.RankDebounceSeconds) * time.Second
}

type JobsConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
}

type LogConfig struct {
	File       string `mapstructure:"file"` // 为空时只输出到控制台
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Path 返回加载时使用的配置目录
func (c *Config) Path() string {
	return c.path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "learnhub.db")

	v.SetDefault("jwt.access_expire_minutes", 60)
	v.SetDefault("jwt.refresh_expire_hours", 24*7)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.min_idle_conns", 5)

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("gamification.leaderboard_size", 50)
	v.SetDefault("gamification.leaderboard_cache_seconds", 60)
	v.SetDefault("gamification.rank_recompute_seconds", 30)
	v.SetDefault("gamification.rank_debounce_seconds", 5)

	v.SetDefault("jobs.concurrency", 2)

	v.SetDefault("tracing.sample_ratio", 1.0)
}

func LoadConfig(path string) (*Config, error) {
	// .env 可选
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LEARNHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// Log
	v.BindEnv("log.file", "LOG_FILE")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.path = path

	cfg.JWT.AccessExpire = cfg.JWT.AccessExpire * time.Minute
	cfg.JWT.RefreshExpire = cfg.JWT.RefreshExpire * time.Hour

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Gamification.LeaderboardSize <= 0 {
		c.Gamification.LeaderboardSize = 50
	}
	if c.Jobs.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("jobs.enabled requires redis.enabled")
	}
	return nil
}
