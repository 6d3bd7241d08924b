package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workforce-service/internal/api/http"
	"github.com/spec-kit/workforce-service/internal/api/http/handlers"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/authz"
	"github.com/spec-kit/workforce-service/internal/bootstrap"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/mailer"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/persistence"
	"github.com/spec-kit/workforce-service/internal/service"
	"github.com/spec-kit/workforce-service/internal/worker"
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

	backend, err := bootstrap.Open(ctx, cfg, logger, cfg.Postgres.RunMigrations)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	stores := backend.Stores

	renderer, err := mailer.NewRenderer()
	if err != nil {
		logger.Fatal("failed to load mail templates", zap.Error(err))
	}
	sender := mailer.NewSender(cfg.Mail, renderer, logger)

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var notifier mailer.Notifier
	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redis.Ping(pingCtx); err == nil {
		if depth, err := redis.QueueDepth(pingCtx, cfg.Mail.QueueKey); err == nil && depth > 0 {
			logger.Info("mail queue backlog", zap.Int64("pending", depth))
		}
		notifier = mailer.NewQueueNotifier(redis.Client, cfg.Mail.QueueKey)
		go worker.NewMailWorker(redis.Client, cfg.Mail.QueueKey, sender, logger).Run(ctx)
	} else {
		if redis != nil {
			logger.Warn("redis unavailable; sending mail inline", zap.Error(err))
		}
		redis = nil
		notifier = mailer.NewDirectNotifier(sender, func(msg mailer.Message, err error) {
			logger.Error("mail delivery failed", zap.String("kind", string(msg.Kind)), zap.Error(err))
		})
	}
	pingCancel()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, notifier, logger, *cfg))

	engine := authz.NewEngine()
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   stores.Users,
		Engine:     engine,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(stores.Users, engine)
	teamService := service.NewTeamService(*cfg, service.TeamDependencies{
		UserRepo:   stores.Users,
		Engine:     engine,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   stores.Tasks,
		UserRepo:   stores.Users,
		Engine:     engine,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: stores.Tickets,
		UserRepo:   stores.Users,
		Engine:     engine,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	deps := map[string]handlers.Pinger{}
	if redis != nil {
		deps["redis"] = redis
	}
	if backend.Postgres != nil {
		deps["postgres"] = backend.Postgres
	}
	if backend.Mongo != nil {
		deps["mongo"] = backend.Mongo
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewServer(*cfg, logger, metrics, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService, authService),
		Team:           handlers.NewTeamHandler(teamService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), stores.Users, logger),
		Engine:         engine,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := backend.Close(closeCtx); err != nil {
		logger.Warn("storage close", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
