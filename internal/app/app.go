package app

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/controller"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/jobs"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/configwatcher"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/security"
	"learnhub_backend/pkg/tracing"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Bus    *events.Bus
	Jobs   *jobs.Manager

	repos           *repositories
	services        *services
	limiter         *security.RateLimiter
	ticker          *service.TickerRankScheduler
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	exam        *repository.ExamRepository
	attempt     *repository.AttemptRepository
	certificate *repository.CertificateRepository
	rankIndex   repository.RankIndex
	cache       repository.LeaderboardCache
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	rank        *service.RankService
	leaderboard *service.LeaderboardService
	stats       *service.StatsService
	course      *service.CourseService
	exam        *service.ExamService
	attempt     *service.AttemptService
	certificate *service.CertificateService
	export      *service.ExportService
	seed        *service.SeedService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	leaderboard *controller.LeaderboardController
	course      *controller.CourseController
	exam        *controller.ExamController
	result      *controller.ResultController
	admin       *controller.AdminController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		exam:        repository.NewExamRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		certificate: repository.NewCertificateRepository(db),
	}

	dbIndex := repository.NewDBRankIndex(repos.user)
	if rdb != nil {
		repos.rankIndex = repository.NewFallbackRankIndex(repository.NewRedisRankIndex(rdb), dbIndex)
		repos.cache = repository.NewRedisLeaderboardCache(rdb)
	} else {
		repos.rankIndex = dbIndex
		repos.cache = repository.NoopLeaderboardCache{}
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.rank = service.NewRankService(db, repos.user, repos.rankIndex)
	s.user = service.NewUserService(repos.user, repos.attempt, s.rank)
	s.leaderboard = service.NewLeaderboardService(
		db,
		repos.user,
		repos.attempt,
		repos.cache,
		cfg.Gamification.LeaderboardSize,
		cfg.Gamification.LeaderboardTTL(),
	)
	s.stats = service.NewStatsService(repos.user, repos.attempt, repos.course, repos.exam, s.rank)
	s.course = service.NewCourseService(repos.course, repos.exam, repos.attempt, repos.user)
	s.exam = service.NewExamService(repos.exam, repos.course)
	s.attempt = service.NewAttemptService(db, repos.attempt, repos.user, s.exam, a.Bus)
	s.certificate = service.NewCertificateService(repos.certificate, repos.attempt)
	s.export = service.NewExportService(repos.attempt)
	s.seed = service.NewSeedService(repos.course, s.course, s.exam)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user, s.stats),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		course:      controller.NewCourseController(s.course),
		exam:        controller.NewExamController(s.exam, s.attempt),
		result:      controller.NewResultController(s.attempt, s.certificate),
		admin:       controller.NewAdminController(s.stats, s.export, s.rank),
		health:      controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	// request_id 需要先于日志与追踪写入
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger.Log.Named("http")))
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 连接数据库与 Redis，Redis 不可用时名次与排行榜回退到数据库
func New(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			if cfg.Jobs.Enabled {
				return nil, fmt.Errorf("init redis: %w", err)
			}
			logger.Log.Warn("Redis unavailable, falling back to database", zap.Error(err))
			rdb = nil
		}
	}

	a, err := newApp(cfg, db, rdb)
	if err != nil {
		return nil, err
	}

	if cfg.Jobs.Enabled {
		a.Jobs = jobs.NewManager(cfg, logger.Log)
		a.Jobs.RegisterHandlers(a.services.rank)
		a.services.rank.SetScheduler(a.Jobs)
	}

	if cfg.Tracing.Enabled {
		a.tracer, err = tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	return a, nil
}

// newApp 组装各层依赖，rdb 可以为 nil
func newApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	if err := util.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	monitoring.Init()

	a := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Bus:    events.NewBus(logger.Log),
	}

	a.repos = a.initRepositories(db, rdb)
	a.services = a.initServices(a.repos, cfg, db)

	a.ticker = service.NewTickerRankScheduler(a.services.rank, cfg.Gamification.RankInterval())
	a.services.rank.SetScheduler(a.ticker)

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, window)

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	a.setupMiddlewares(router, cfg)
	a.registerRoutes(router, a.initControllers(a.services))
	a.Router = router

	a.RegisterConfigCallback(func(c *config.Config) {
		logger.SetLevel(c.Server.Mode)
	})
	a.RegisterConfigCallback(func(c *config.Config) {
		a.services.leaderboard.SetSize(c.Gamification.LeaderboardSize)
	})

	return a, nil
}

func (a *App) RankService() *service.RankService {
	return a.services.rank
}

func (a *App) SeedService() *service.SeedService {
	return a.services.seed
}

func (a *App) Migrate() error {
	return database.Migrate(a.DB)
}

// subscribe 订阅判分事件，ctx 取消后退订
func (a *App) subscribe(ctx context.Context) error {
	if err := a.Bus.SubscribeAttemptGraded(ctx, "rank", a.services.rank.HandleAttemptGraded); err != nil {
		return err
	}
	return a.Bus.SubscribeAttemptGraded(ctx, "leaderboard", a.services.leaderboard.HandleAttemptGraded)
}

func (a *App) startBackgroundTasks(ctx context.Context) error {
	if err := a.subscribe(ctx); err != nil {
		return fmt.Errorf("subscribe events: %w", err)
	}

	if a.Jobs != nil {
		if err := a.Jobs.Start(); err != nil {
			return fmt.Errorf("start jobs: %w", err)
		}
	} else {
		go a.ticker.Run(ctx)
	}

	go a.limiter.Cleanup(ctx.Done())

	if dir := a.Config.Path(); dir != "" {
		err := configwatcher.WatchConfig(ctx, dir, func(c *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(c)
			}
		})
		if err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	// 启动时重建一次名次与实时索引
	go func() {
		if _, err := a.services.rank.Recompute(ctx); err != nil {
			logger.Log.Error("Initial rank recompute failed", zap.Error(err))
		}
	}()
	return nil
}

// Run 阻塞直到 ctx 取消，然后优雅关闭
func (a *App) Run(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.startBackgroundTasks(bgCtx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info("Server exiting")
	return nil
}

// Close 释放连接，Run 返回后调用
func (a *App) Close() {
	if a.Jobs != nil {
		a.Jobs.Stop()
	}
	if err := a.Bus.Close(); err != nil {
		logger.Log.Warn("Failed to close event bus", zap.Error(err))
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
