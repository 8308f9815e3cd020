package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/cache"
	"github.com/Bateyjosue/xenfi-systems/internal/config"
	"github.com/Bateyjosue/xenfi-systems/internal/database"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config:\n%v", err)
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", logging.FieldError, err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	appLog := logging.WithComponent(logger, logging.ComponentApp)

	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if cfg.Database.Seed {
		if err := database.Seed(context.Background(), db, cfg.Security.BcryptCost); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		appLog.Info("database seeded")
	}

	appCache, stop := openCache(cfg.Cache, logger)
	defer stop()

	r, err := router.SetupRouter(cfg, db, appCache, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("server listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		appLog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	appLog.Info("server stopped cleanly")
	return nil
}

// openCache connects to Redis when configured. An unreachable Redis falls
// back to the in-process cache; the API works either way.
func openCache(cfg config.CacheConfig, logger *slog.Logger) (cache.Cache, func()) {
	cacheLog := logging.WithComponent(logger, logging.ComponentCache)

	if cfg.RedisURL != "" {
		rc, err := cache.DialRedis(context.Background(), cfg.RedisURL)
		if err == nil {
			cacheLog.Info("using redis cache")
			return rc, func() { _ = rc.Close() }
		}
		cacheLog.Warn("redis unavailable, using in-memory cache", logging.FieldError, err)
	}

	mem := cache.NewMemory(cfg.MemorySize)
	mgr := cache.NewManager(cacheLog)
	mgr.Register(mem)
	mgr.StartCleanup(cfg.CleanupInterval)
	return mem, mgr.Stop
}
