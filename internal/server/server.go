// Package server assembles the HTTP front end from a container and runs it
// until the context is cancelled.
package server

import (
	"context"
	"time"

	"dxsim/internal/api"
	"dxsim/internal/container"
	"dxsim/ui"
)

const shutdownTimeout = 10 * time.Second

// NewApp wires the form UI, the JSON API and, when enabled, /metrics
func NewApp(c *container.Container) (*ui.App, error) {
	handler := api.NewSimulationHandler(c.Simulation, c.Sweep, c.Logger)

	return ui.NewApp(ui.Config{
		Port:        c.Config.Server.Port,
		Simulations: c.Simulation,
		API:         api.NewRouter(handler, c.Logger),
		Metrics:     c.MetricsHandler(),
		Logger:      c.Logger,
	})
}

// Run serves until ctx is done, then shuts down gracefully
func Run(ctx context.Context, c *container.Container) error {
	app, err := NewApp(c)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.Logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	}
}
