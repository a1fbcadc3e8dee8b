// Package httpserver owns the process's HTTP front: server construction and
// the serve-then-drain lifecycle the API binary runs under.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultShutdownGrace bounds how long in-flight registrations get to finish
// once shutdown begins.
const DefaultShutdownGrace = 10 * time.Second

// New builds the API server. Registration handlers move funds, so the write
// side carries no timeout; the read header timeout still cuts off slow
// clients.
func New(addr string, handler http.Handler) (*http.Server, error) {
	if addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// grace before forcing connections closed.
func Run(ctx context.Context, srv *http.Server, grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
