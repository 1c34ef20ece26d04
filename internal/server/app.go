// Package server wires the hireledger application: storage, token
// registry, signal bus, hiring services, the gRPC surface and the admin
// HTTP surface, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/hireledger/internal/kv"
	"github.com/dmitrijs2005/hireledger/internal/ledger"
	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/server/admin"
	"github.com/dmitrijs2005/hireledger/internal/server/config"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hireledger/internal/server/services"
	"github.com/dmitrijs2005/hireledger/internal/signals"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/hireledger/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	kv       *badger.DB
	repos    repomanager.RepositoryManager
	bus      *signals.Bus
	journal  *signals.Journal
	registry *prometheus.Registry
	services gs.Services
}

// newRepositoryManager picks Postgres when a DSN is configured and the
// in-process store otherwise.
func newRepositoryManager(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, state is kept in memory")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := repomanager.OpenPostgres(c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return rm, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	kvdb, err := kv.Open(c.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("ledger storage init error: %w", err)
	}

	reg, err := ledger.NewBadgerRegistry(kvdb, []byte(c.LedgerSecret), ledger.WithLogger(logger))
	if err != nil {
		_ = kvdb.Close()
		return nil, fmt.Errorf("ledger init error: %w", err)
	}

	repos, err := newRepositoryManager(ctx, c, logger)
	if err != nil {
		_ = kvdb.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	journal := signals.NewJournal(kvdb)
	bus := signals.NewBus(promReg, journal, logger)

	deps := &services.Deps{
		Repos:              repos,
		Registry:           reg,
		Signals:            bus,
		Logger:             logger,
		OwnerSubject:       c.OwnerSubject,
		RequireAllVerified: c.RequireAllVerified,
	}

	app := &App{
		config:   c,
		logger:   logger,
		kv:       kvdb,
		repos:    repos,
		bus:      bus,
		journal:  journal,
		registry: promReg,
		services: gs.Services{
			Adverts:      services.NewAdvertService(deps),
			Applications: services.NewApplicationService(deps),
			Escrow:       services.NewEscrowService(deps, services.NewPresigner(c, nil)),
			Scores:       services.NewScoreService(deps),
		},
	}
	app.auditSignals()
	return app, nil
}

// auditSignals mirrors every signal into the application log.
func (app *App) auditSignals() {
	audit := app.logger.With("module", "audit")
	for _, t := range signals.Types {
		app.bus.SubscribeFunc(t, func(sig signals.Signal) {
			audit.Info(context.Background(), "signal", "seq", sig.Seq, "type", sig.Type, "data", sig.Data)
		})
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) close(ctx context.Context) {
	app.bus.Stop()
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing repositories", "error", err)
	}
	if err := app.kv.Close(); err != nil {
		app.logger.Error(ctx, "closing ledger storage", "error", err)
	}
}

// Run serves the gRPC and admin surfaces until ctx is cancelled, a
// termination signal arrives or either server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)
	defer app.close(context.Background())

	grpcServer := gs.NewServer(app.config.EndpointAddrGRPC, app.logger, app.services, app.config.SecretKey, app.repos.Ping)
	adminServer := admin.NewServer(app.config.EndpointAddrAdmin, admin.NewRouter(app.repos.Ping, app.registry, app.journal), app.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return adminServer.Run(ctx) })

	if err := g.Wait(); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	return nil
}
