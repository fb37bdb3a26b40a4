// Package server assembles and runs the POS HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/licorgest/licorgest/app/routes"
	"github.com/licorgest/licorgest/config"
	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/cart"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/internal/checkout"
	"github.com/licorgest/licorgest/internal/dashboard"
	"github.com/licorgest/licorgest/internal/reports"
	"github.com/licorgest/licorgest/pkg/cache"
	"github.com/licorgest/licorgest/pkg/logger"
	"github.com/licorgest/licorgest/pkg/router"
	"github.com/licorgest/licorgest/pkg/storage"
	"github.com/licorgest/licorgest/pkg/ws"
)

// App is the assembled service and its shared components.
type App struct {
	Router    *router.Router
	Client    *api.Client
	Store     *catalog.Store
	Carts     *cart.Registry
	Sequencer *checkout.Sequencer
	Reports   *reports.Service
	Dashboard *dashboard.Service
}

// Build wires every component and mounts the routes.
func Build() (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("server: load config: %w", err)
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, sessions are per-process", "error", err)
	}
	storage.Connect()

	client := api.New()
	store := catalog.NewStore(client)
	carts := cart.NewRegistry()
	sequencer := checkout.New(client, store, config.CheckoutWorkers(), checkout.WithHub(ws.SessionHub))

	reportSvc, err := reports.Open(config.ReportsDSN(), client, store)
	if err != nil {
		return nil, err
	}

	app := &App{
		Router:    router.New(),
		Client:    client,
		Store:     store,
		Carts:     carts,
		Sequencer: sequencer,
		Reports:   reportSvc,
		Dashboard: dashboard.NewService(client, store),
	}

	err = routes.RegisterAPI(app.Router, routes.Deps{
		Client:    client,
		Store:     store,
		Carts:     carts,
		Sequencer: sequencer,
		Reports:   reportSvc,
		Dashboard: app.Dashboard,
		Hub:       ws.SessionHub,
	})
	if err != nil {
		return nil, fmt.Errorf("server: register routes: %w", err)
	}

	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	// Warm the catalog so the first screen does not wait on the API.
	warmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if _, err := a.Store.Refresh(warmCtx); err != nil {
		logger.Warn("server: initial catalog fetch failed, starting with empty shelf", "error", err)
	}
	cancel()

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           a.Router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	a.Sequencer.Close()
	logger.CloseAudit()
	if err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
