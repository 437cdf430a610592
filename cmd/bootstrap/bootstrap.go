package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-clinic-scheduler/config"
	deliveryHttp "go-clinic-scheduler/internal/delivery/http"
	"go-clinic-scheduler/internal/delivery/http/handler"
	"go-clinic-scheduler/internal/delivery/http/middleware"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/infrastructure/cache"
	"go-clinic-scheduler/internal/infrastructure/database"
	"go-clinic-scheduler/internal/infrastructure/lock"
	"go-clinic-scheduler/internal/repository"
	"go-clinic-scheduler/internal/service"
	"go-clinic-scheduler/internal/usecase"
	"go-clinic-scheduler/internal/worker"
	"go-clinic-scheduler/pkg/jwt"
	"go-clinic-scheduler/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Job         *worker.SlotGenerationJob
	Scheduler   *worker.Scheduler
	JWT         *jwt.JWTService
	Tokens      cache.TokenStore
}

// LoadConfig configures logging and reads configuration. It needs no external services.
func LoadConfig() (*config.Config, error) {
	setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.App.Env == "development" {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.Info("Configuration loaded successfully")
	return cfg, nil
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	if err := app.initialize(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

func (app *App) initialize() error {
	cfg := app.Config
	log := logrus.StandardLogger()
	location := cfg.App.Location()

	app.JWT = jwt.NewJWTService(cfg.JWT)
	app.Tokens = cache.NewTokenStore(app.RedisClient)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	doctorRepo := repository.NewDoctorRepository()
	slotRepo := repository.NewScheduleSlotRepository()
	consultationRepo := repository.NewConsultationRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	txManager := database.NewTxManager(app.DB)
	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	generationUsecase := usecase.NewSlotGenerationUsecase(txManager, log, doctorRepo, slotRepo, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(txManager, log, doctorRepo, slotRepo, consultationRepo, auditService, location)
	deletionUsecase := usecase.NewSlotDeletionUsecase(txManager, log, doctorRepo, slotRepo, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(txManager, log, doctorRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(txManager, log, auditLogRepo)

	// Initialize background generation
	app.Job = worker.NewSlotGenerationJob(generationUsecase, lock.NewRedisLocker(app.RedisClient), log, cfg.Scheduler.JobTimeout)
	scheduler, err := worker.NewScheduler(cfg.Scheduler, location, app.Job, log)
	if err != nil {
		return err
	}
	app.Scheduler = scheduler

	windowMonths := cfg.Scheduler.WindowMonths
	if windowMonths <= 0 {
		windowMonths = entity.DefaultWindowMonths
	}

	// Initialize handlers
	scheduleHandler := handler.NewScheduleHandler(app.Job, deletionUsecase, availabilityUsecase, customValidator, location, windowMonths, cfg.Scheduler.BatchSize)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase, customValidator, location)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(app.JWT, app.Tokens)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(scheduleHandler, availabilityHandler, doctorHandler, auditLogHandler, authMiddleware, corsMiddleware)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and the generation scheduler, then handles graceful shutdown
func (app *App) Run() {
	if app.Config.Scheduler.Enabled {
		app.Scheduler.Start()
	} else {
		logrus.Info("Slot generation scheduler disabled")
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// Generate runs slot generation in the foreground under the shared lease.
func (app *App) Generate(ctx context.Context, params usecase.GenerateParams) error {
	summary, err := app.Job.RunNow(ctx, params)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"window":            summary.WindowStart + ".." + summary.WindowEnd,
		"doctors_processed": summary.DoctorsProcessed,
		"doctors_skipped":   summary.DoctorsSkipped,
		"slots_added":       summary.SlotsAdded,
		"errors":            len(summary.Errors),
	}).Info("Slot generation summary")
	for _, e := range summary.Errors {
		logrus.Warnf("Doctor %s (%s): %s", e.Doctor, e.DoctorID, e.Error)
	}
	return nil
}

// IssueToken signs an access token and registers it as live.
func (app *App) IssueToken(ctx context.Context, subject, role string, ttl time.Duration) (string, error) {
	if ttl < 0 {
		return "", fmt.Errorf("invalid token ttl %s", ttl)
	}
	if ttl == 0 {
		ttl = app.JWT.GetAccessExpiry()
	}
	token, tokenID, err := app.JWT.GenerateAccessToken(subject, role, ttl)
	if err != nil {
		return "", err
	}
	if err := app.Tokens.Save(ctx, subject, tokenID, ttl); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop accepting scheduled runs, then cancel and wait for in-flight ones.
	cronDone := app.Scheduler.Stop()
	app.Job.Stop()
	select {
	case <-cronDone.Done():
	case <-ctx.Done():
		logrus.Warn("Timed out waiting for scheduled run to finish")
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.Job != nil {
		app.Job.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
