package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"vocab-quiz/internal/adapter"
	"vocab-quiz/internal/bank"
	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/clock"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/handler"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/repository"
	"vocab-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	if cfg.File != "" {
		appLogger.Info("Configuration loaded", zap.String("file", cfg.File))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]service.HealthCheck{}

	profileStore, closeProfileStore, err := newProfileStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize profile store", zap.String("backend", cfg.Storage.ProfileBackend), zap.Error(err))
	}
	defer closeProfileStore()
	checks["profile_store"] = profileStore.Ping
	appLogger.Info("Profile store initialized", zap.String("backend", cfg.Storage.ProfileBackend))

	bankRepository, bankCheck, closeBank, err := newBankRepository(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize bank repository", zap.String("backend", cfg.Storage.BankBackend), zap.Error(err))
	}
	defer closeBank()
	if bankCheck != nil {
		checks["bank_store"] = bankCheck
	}
	appLogger.Info("Bank repository initialized", zap.String("backend", cfg.Storage.BankBackend))

	// Initialize services
	clk := clock.NewReal(cfg.Quiz.FrameInterval)
	profileService := service.NewProfileService(profileStore, clk.Now)
	quizService, err := service.NewQuizService(ctx, service.QuizDeps{
		Bank:     bankRepository,
		Profiles: profileService,
		Clock:    clk,
		Defaults: cfg.Quiz,
		Checks:   checks,
	})
	if err != nil {
		appLogger.Fatal("Failed to create QuizService", zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		MaxAge:       300,
	}))

	handler.RegisterRoutes(app, handler.NewQuizHandler(quizService))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Server exited with error", zap.Error(err))
		return
	}
	appLogger.Info("Server exited gracefully")
}

func newProfileStore(ctx context.Context, cfg *config.Config) (domain.KVStore, func(), error) {
	switch cfg.Storage.ProfileBackend {
	case config.BackendRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return adapter.NewRedisStoreAdapter(client), func() { _ = client.Close() }, nil
	default:
		store, err := adapter.NewFileStoreAdapter(cfg.Storage.ProfilePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func newBankRepository(ctx context.Context, cfg *config.Config) (domain.BankRepository, service.HealthCheck, func(), error) {
	switch cfg.Storage.BankBackend {
	case config.BackendPostgres:
		db, err := database.NewSQLXPostgresDB(ctx, cfg.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		repo := repository.NewBankDatabaseAdapter(db, repository.NewTransactionManagerAdapter(db))
		return repo, db.PingContext, func() { _ = db.Close() }, nil
	default:
		return repository.NewBankMemoryAdapter(bank.DefaultRaw()), nil, func() {}, nil
	}
}
