package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/training-tracker/internal/api/http"
	"github.com/spec-kit/training-tracker/internal/api/http/handlers"
	"github.com/spec-kit/training-tracker/internal/auth"
	"github.com/spec-kit/training-tracker/internal/config"
	"github.com/spec-kit/training-tracker/internal/events"
	"github.com/spec-kit/training-tracker/internal/observability"
	"github.com/spec-kit/training-tracker/internal/persistence"
	"github.com/spec-kit/training-tracker/internal/repository"
	"github.com/spec-kit/training-tracker/internal/service"
	"github.com/spec-kit/training-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	trainingRepo := repository.NewTrainingRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	summaryCache := persistence.NewSummaryCache(redis, time.Minute)

	authService := service.NewAuthService(*cfg, userRepo)
	trainingService := service.NewTrainingService(trainingRepo, dispatcher)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: assignmentRepo,
		UserRepo:       userRepo,
		TrainingRepo:   trainingRepo,
		Dispatcher:     dispatcher,
		Cache:          summaryCache,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Auth:           handlers.NewAuthHandler(authService),
		Trainings:      handlers.NewTrainingsHandler(trainingService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
