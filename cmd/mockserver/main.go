// mockserver is a local development backend for alertfeed: it serves the
// /free and /paid REST endpoints and a WebSocket stream emitting synthetic
// alert and ticker frames, including the heartbeat protocol.
//
// Usage: go run ./cmd/mockserver --addr :9000
//
// The --paid-shape flag switches the /paid wire shape between "array",
// "data" and "page" so all three client decode paths can be exercised.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	paidShape := flag.String("paid-shape", "page", "wire shape for /paid: array, data or page")
	token := flag.String("token", "dev-token", "bearer token required by /paid")
	interval := flag.Duration("interval", 2*time.Second, "synthetic alert emit interval")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	srv := newMockServer(mockConfig{
		PaidShape:    *paidShape,
		Token:        *token,
		EmitInterval: *interval,
	}, logger)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: srv.routes(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("mock server listening", "addr", *addr, "paid_shape", *paidShape)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		srv.emitLoop(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("mock server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("mock server stopped")
}
