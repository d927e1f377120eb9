package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/server"
	"github.com/filedepot/filedepot/internal/server/auth"
	"github.com/filedepot/filedepot/internal/server/blob"
	"github.com/filedepot/filedepot/internal/server/files"
	"github.com/filedepot/filedepot/internal/server/handlers"
	"github.com/filedepot/filedepot/internal/server/queue"
	"github.com/filedepot/filedepot/internal/server/sessions/boltdb"
	"github.com/filedepot/filedepot/internal/server/storage/sqlite"
	"github.com/filedepot/filedepot/internal/server/thumbs"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Hour
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	sessionStore, err := boltdb.New(ctx, cfg.SessionsPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessionStore.Close()

	blobStore, err := blob.NewDiskStore(cfg.FolderPath)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	tasks := queue.New(logger, cfg.QueueSize)

	authSvc := auth.NewService(logger, store, sessionStore)
	filesSvc := files.NewService(logger, store, blobStore, tasks)
	worker := thumbs.NewWorker(logger, store, store, blobStore)

	router := server.NewRouter(logger, server.Handlers{
		App:   handlers.NewAppHandler(logger, store, store, store, sessionStore),
		Users: handlers.NewUsersHandler(logger, authSvc, tasks),
		Auth:  handlers.NewAuthHandler(logger, authSvc),
		Files: handlers.NewFilesHandler(logger, filesSvc, authSvc),
	}, authSvc, cfg.CorsConfig)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			"addr", cfg.Addr,
			"version", Version,
			"workers", cfg.Workers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return tasks.Run(gCtx, cfg.Workers, worker.Handle)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if n, err := sessionStore.Cleanup(gCtx); err != nil {
					logger.Warn("session sweep failed", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
			}
		}
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func printVersion() {
	fmt.Printf("FileDepot Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
