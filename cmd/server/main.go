// Package main initializes and starts the TripSync server, setting up
// configuration, logging, the database, the repository, the service,
// handlers, optional TLS and graceful shutdown.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/TripSync/internal/auth"
	"github.com/atinyakov/TripSync/internal/config"
	"github.com/atinyakov/TripSync/internal/db"
	"github.com/atinyakov/TripSync/internal/logger"
	"github.com/atinyakov/TripSync/internal/middleware"
	"github.com/atinyakov/TripSync/internal/repository"
	"github.com/atinyakov/TripSync/internal/server/handler/http"
	"github.com/atinyakov/TripSync/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Purge deleted places in the background.
	db.StartSoftDeleteCleaner(ctx, postgresDB,
		time.Duration(options.CleanInterval),
		time.Duration(options.Retention),
		zapLogger,
	)

	syncRepo := repository.NewPostgresTripRepository(postgresDB)
	syncService := service.NewSyncService(syncRepo)
	syncHandler := &http.SyncHandler{SyncService: syncService, Log: zapLogger}

	var authMW func(nethttp.Handler) nethttp.Handler
	if options.JWTSecret != "" {
		authMW = middleware.BearerAuth(auth.NewJWTAuth(options.JWTSecret), zapLogger)
	} else {
		zapLogger.Warn("JWT secret not set, /api is unauthenticated")
	}

	router := http.NewRouter(syncHandler, zapLogger, authMW)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSCert != "" {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
