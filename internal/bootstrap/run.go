package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// RunUntilShutdown blocks until the process receives an interrupt or
// termination signal, then drains the HTTP server.
func RunUntilShutdown(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		<-gctx.Done()
		if logger != nil {
			logger.Info("shutdown signal received")
		}
		return ShutdownHTTPServer(context.Background(), server, logger)
	})

	return g.Wait()
}
