// Package container wires the application together: database, repositories,
// event dispatcher, workflow engine, and services, with ordered startup and
// reverse-order teardown.
package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/openlistings/collateral-workflow/internal/application/dispatcher"
	"github.com/openlistings/collateral-workflow/internal/application/engine"
	"github.com/openlistings/collateral-workflow/internal/application/port"
	"github.com/openlistings/collateral-workflow/internal/application/service"
	"github.com/openlistings/collateral-workflow/internal/config"
	"github.com/openlistings/collateral-workflow/internal/domain/workflow"
	"github.com/openlistings/collateral-workflow/internal/infrastructure/notify"
	"github.com/openlistings/collateral-workflow/internal/infrastructure/persistence/memory"
	"github.com/openlistings/collateral-workflow/internal/infrastructure/persistence/sqlite"
	"github.com/openlistings/collateral-workflow/internal/report"
	"github.com/openlistings/collateral-workflow/pkg/database"
)

// Container manages all application dependencies and lifecycle
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	db          *database.DB
	draftRepo   port.DraftRepository
	historyRepo port.HistoryRepository
	listingRepo port.ListingRepository
	listings    port.ListingProvider
	txManager   port.TransactionManager

	// Application
	dispatcher   dispatcher.Dispatcher
	engine       engine.Engine
	drafts       service.DraftService
	notification service.NotificationService
	exporter     *report.AuditExporter

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// New creates a container from configuration. Call Start to initialize.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order: database and
// repositories first, then the dispatcher, engine, and services.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	c.dispatcher = dispatcher.NewDispatcher(
		dispatcher.WithLogger(&zapLoggerAdapter{logger: c.logger}),
	)

	c.engine = engine.New(
		workflow.DefaultRegistry(),
		c.draftRepo,
		c.historyRepo,
		c.txManager,
		c.listings,
		c.logger,
		engine.WithDispatcher(c.dispatcher),
	)

	c.drafts = service.NewDraftService(c.engine, c.draftRepo, c.historyRepo, c.listingRepo, c.logger)

	resolver := notify.NewStaticResolver(c.config.Notifications.Recipients)
	sender := notify.NewLogSender(c.logger)
	c.notification = service.NewNotificationService(resolver, sender, c.config.Notifications.CacheTTL, c.logger)
	c.notification.Register(c.dispatcher)

	c.exporter = report.NewAuditExporter(c.config.Report.OutputDir, c.logger)

	c.ready.Store(true)
	c.logger.Info("Container started")
	return nil
}

// initStorage selects the persistence backend. An empty database path wires
// the in-memory store; otherwise SQLite with migrations applied.
func (c *Container) initStorage() error {
	if c.config.Database.Path == "" {
		store := memory.NewStore()
		c.draftRepo = store
		c.historyRepo = store
		c.listingRepo = store.Listings()
		c.listings = store.Listings()
		c.txManager = store
		c.logger.Info("Using in-memory store")
		return nil
	}

	db, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}
	c.db = db

	migrator := database.NewMigrator(db, c.logger)
	if err := migrator.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	txDB := sqlite.NewDB(db.DB, c.logger)
	c.draftRepo = sqlite.NewDraftRepository(txDB, c.logger)
	c.historyRepo = sqlite.NewHistoryRepository(txDB, c.logger)
	listingRepo := sqlite.NewListingRepository(txDB, c.logger)
	c.listingRepo = listingRepo
	c.listings = listingRepo
	c.txManager = txDB

	return nil
}

// Close shuts down components in reverse order of initialization
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed")
	return nil
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// DraftService returns the draft application service
func (c *Container) DraftService() service.DraftService {
	return c.drafts
}

// AuditExporter returns the audit report exporter
func (c *Container) AuditExporter() *report.AuditExporter {
	return c.exporter
}

// Logger returns a sugared-style adapter over the container's logger
func (c *Container) Logger() *zapLoggerAdapter {
	return &zapLoggerAdapter{logger: c.logger}
}

// zapLoggerAdapter adapts zap.Logger to the leveled key/value interfaces the
// dispatcher and HTTP server expect.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
