package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ruslano69/recordkit/pkg/httpapi"
)

const shutdownTimeout = 15 * time.Second

// Handler builds the HTTP API for --serve
func (a *App) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.Deps{
		Health:   a.manager,
		Records:  a.facade,
		QueryLog: a.exec.Log(),
		Metrics:  a.metrics.Handler(),
		Logger:   a.logger,
	})
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully
func (a *App) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Connect in the background so /readyz reflects the real state
	go func() {
		if err := a.manager.Connect(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("initial connection failed")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("addr", addr).
			Str("driver", a.cfg.Driver).
			Msg("recordctl serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info().Msg("stopped")
	return nil
}
