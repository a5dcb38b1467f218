package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	apihttp "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, db.PoolHandle(), cfg.Postgres, logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		if err := persistence.AlignTicketSequence(ctx, db.PoolHandle(), cfg.Ticket.SequenceStart, logger); err != nil {
			logger.Fatal("ticket sequence alignment failed", zap.Error(err))
		}
	}

	cache := persistence.NewRedis(cfg.Redis, logger)
	defer cache.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewDispatcher(logger)

	pool := db.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	orgRepo := repository.NewOrganizationRepository(pool)
	deptRepo := repository.NewDepartmentRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	policyRepo := repository.NewSLAPolicyRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	tokens := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTokenTTLMinutes)*time.Minute,
		cfg.App.Name,
	)

	slaService := service.NewSLAService(policyRepo, cfg.SLA, logger)
	ticketService := service.NewTicketService(service.TicketServiceDeps{
		Tickets:     ticketRepo,
		Comments:    commentRepo,
		Users:       userRepo,
		Departments: deptRepo,
		SLA:         slaService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	statsService := service.NewStatsService(service.StatsServiceDeps{
		Stats:   statsRepo,
		Tickets: ticketRepo,
		Redis:   cache.Client,
		Config:  cfg.Dashboard,
		Logger:  logger,
	})
	authService := service.NewAuthService(userRepo, tokens, logger)
	orgService := service.NewOrgService(orgRepo, deptRepo, categoryRepo)

	notifications := service.NewNotificationService(cfg.Notification, logger)
	notifications.Register(dispatcher)

	notificationWorker := worker.NewNotificationWorker(notifications.Queue(), cfg.Notification, logger)
	go notificationWorker.Run(ctx)

	dashboardWorker := worker.NewDashboardWorker(orgRepo, statsService, cfg.Dashboard, logger)
	if pool != nil {
		if err := dashboardWorker.Start(ctx); err != nil {
			logger.Warn("dashboard pollers not started", zap.Error(err))
		}
	}
	defer dashboardWorker.Stop()

	app := apihttp.NewApp(apihttp.RouterDeps{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Users:   userRepo,
		Tokens:  tokens,
		Tickets: ticketService,
		Stats:   statsService,
		SLA:     slaService,
		Auth:    authService,
		Orgs:    orgService,
		Health:  handlers.NewHealthHandler(db, cfg.App.Version),
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
