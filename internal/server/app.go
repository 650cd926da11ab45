// Package server wires the gateway together: storage, token manager,
// account flows, upstream clients and the HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gatekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/gatekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/dmitrijs2005/gatekeeper/internal/server/upstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.HTTPServer
}

// NewApp builds the application from a validated config, logging JSON to
// stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rm, err := newRepositoryManager(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	tm, err := auth.NewTokenManager([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("token manager init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	upstreamClient := &http.Client{Timeout: c.UpstreamTimeout}

	accounts := services.NewAccountService(rm, cryptox.NewArgon2idHasher(), tm, logger)
	srv := httpapi.NewHTTPServer(c.EndpointAddrHTTP, c.ShutdownTimeout, logger, httpapi.Dependencies{
		Accounts:  accounts,
		Tokens:    tm,
		PublicAPI: upstream.NewPublicAPIClient(c.PublicAPIURL, upstreamClient),
		Ethereum:  upstream.NewEthereumClient(c.EthereumRPCURL, upstreamClient),
		Metrics:   m,
	})

	return &App{config: c, logger: logger, repomanager: rm, httpServer: srv}, nil
}

// newRepositoryManager connects to PostgreSQL and migrates it, or falls
// back to the in-memory store when no DSN is configured.
func newRepositoryManager(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, accounts are kept in memory")
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	rm, err := repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return rm, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// the HTTP server down and closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.httpServer.Run(gctx)
	})

	err := g.Wait()

	if cerr := app.repomanager.Close(); cerr != nil {
		app.logger.Error(ctx, "storage close error", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
