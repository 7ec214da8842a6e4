package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/attachments"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/notify"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/store"
	"github.com/spec-kit/helpdesk/internal/worker"
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

	ticketStore, cleanup, err := buildTicketStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init ticket store", zap.Error(err))
	}
	defer cleanup()

	docs := attachments.NewManager(cfg.Docs.Root)
	notifier := notify.NewSMTPNotifier(cfg.Mail, logger)
	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:       ticketStore,
		Attachments: docs,
		Dispatcher:  dispatcher,
		Staff:       cfg.Staff,
	})
	notificationService := service.NewNotificationService(dispatcher, notifier, logger, cfg.Staff)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	staffGate := auth.NewStaffGate(tokens, cfg.Staff)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(),
		Tickets:      handlers.NewTicketsHandler(ticketService),
		Staff:        handlers.NewStaffHandler(tokens, cfg.Staff),
		StaffTickets: handlers.NewStaffTicketsHandler(ticketService),
		StaffGate:    staffGate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildTicketStore selects the table backend: Postgres when a DSN is
// configured, the flat CSV file otherwise.
func buildTicketStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.TicketStore, func(), error) {
	if cfg.Store.PostgresDSN == "" {
		logger.Info("using csv ticket store", zap.String("path", cfg.Store.CSVPath))
		return store.NewCSVStore(cfg.Store.CSVPath), func() {}, nil
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		pg.Close()
		return nil, nil, err
	}
	logger.Info("using postgres ticket store")
	return store.NewPostgresStore(pg.PoolHandle()), pg.Close, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
