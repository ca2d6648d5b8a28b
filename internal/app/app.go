package app

import (
	"context"
	"edureach_backend/internal/config"
	"edureach_backend/internal/controller"
	"edureach_backend/internal/repository"
	"edureach_backend/internal/service"
	"edureach_backend/internal/util"
	"edureach_backend/pkg/configwatcher"
	"edureach_backend/pkg/database"
	"edureach_backend/pkg/logger"
	"edureach_backend/pkg/monitoring"
	"edureach_backend/pkg/security"
	"edureach_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	ConfigFile string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client

	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	quiz      *repository.QuizRepository
	course    *repository.CourseRepository
	offline   *repository.OfflineRepository
	analytics *repository.AnalyticsRepository
}

type services struct {
	storage   *service.StorageService
	sessions  *service.RedisSessionStore
	auth      *service.AuthService
	ai        *service.AIService
	tutor     *service.TutorService
	quiz      *service.QuizService
	course    *service.CourseService
	dashboard *service.DashboardService
	hub       *service.ProgressHub
	offline   *service.OfflineService
	analytics *service.AnalyticsService
}

type controllers struct {
	auth      *controller.AuthController
	dashboard *controller.DashboardController
	course    *controller.CourseController
	quiz      *controller.QuizController
	offline   *controller.OfflineController
	tutor     *controller.TutorController
	health    *controller.HealthController
	analytics *controller.AnalyticsController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) reloadConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		quiz:      repository.NewQuizRepository(db),
		course:    repository.NewCourseRepository(db),
		offline:   repository.NewOfflineRepository(db),
		analytics: repository.NewAnalyticsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.sessions = service.NewRedisSessionStore(rdb)
	s.auth = service.NewAuthService(repos.user, s.sessions, cfg)

	s.ai = service.NewAIService(cfg.AI)
	s.tutor = service.NewTutorService(s.ai)

	s.quiz = service.NewQuizService(repos.quiz)
	s.course = service.NewCourseService(repos.course, repos.quiz)
	s.dashboard = service.NewDashboardService(s.course, s.quiz)
	s.analytics = service.NewAnalyticsService(repos.course, repos.analytics)

	s.hub = service.NewProgressHub(rdb)
	go s.hub.Run()

	s.offline = service.NewOfflineService(repos.offline, s.storage, s.hub, service.NewTickerScheduler(), cfg.Offline)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.tutor),
		dashboard: controller.NewDashboardController(s.dashboard),
		course:    controller.NewCourseController(s.course),
		quiz:      controller.NewQuizController(s.quiz),
		offline:   controller.NewOfflineController(s.offline, s.hub),
		tutor:     controller.NewTutorController(s.tutor),
		health:    controller.NewHealthController(db, rdb),
		analytics: controller.NewAnalyticsController(s.analytics),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	limiter := security.NewIPLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	go limiter.Cleanup(a.ctx)
	router.Use(limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config, configFile string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.SkipSeed)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:     cfg,
		ConfigFile: configFile,
		DB:         db,
		Redis:      rdb,
		ctx:        ctx,
		cancel:     cancel,
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("edureach-backend", cfg.Tracing.CollectorEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	// 配置热更新：调整模拟下载的速度
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.offline.ApplyConfig(newCfg.Offline)
	})
	app.RegisterConfigCallback(logger.SetLevel)

	monitoring.Init()

	router := gin.Default()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) watchConfig() {
	if a.ConfigFile == "" {
		return
	}
	if err := configwatcher.Watch(a.ctx, a.ConfigFile, a.reloadConfig); err != nil {
		logger.Log.Warn("Config hot reload disabled", zap.String("file", a.ConfigFile), zap.Error(err))
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	go a.watchConfig()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 先停止模拟下载，再断开进度推送连接
	a.services.offline.Close()
	a.services.hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	a.cancel()
	if err := a.Redis.Close(); err != nil {
		logger.Log.Warn("Failed to close redis", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
}
