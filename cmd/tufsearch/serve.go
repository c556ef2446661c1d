package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/T21C/tuf-backend-sub003/internal/metrics"
	chiTransport "github.com/T21C/tuf-backend-sub003/internal/transport/chi"
	"github.com/T21C/tuf-backend-sub003/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the search API server",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("Starting tufsearch server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.Strings("engine_addrs", a.cfg.Engine.Addrs),
		zap.String("store_path", a.cfg.Database.Path),
	)

	// Live updates flow from the store's write lifecycle from here on.
	a.sync.Listen(a.store)

	// A missing or stale mapping forces a full rebuild before serving.
	if err := a.reindex.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	server := chiTransport.NewServer(a.search, a.reindex, a.engine, a.logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	a.logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error during shutdown", zap.Error(err))
	}

	a.logger.Info("Server stopped gracefully")
	return nil
}
