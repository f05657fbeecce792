package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	api "github.com/mind-engage/whosthat/internal/api/http"
	auth "github.com/mind-engage/whosthat/internal/auth/middleware"
	"github.com/mind-engage/whosthat/internal/catalog"
	"github.com/mind-engage/whosthat/internal/config"
	"github.com/mind-engage/whosthat/internal/db"
	"github.com/mind-engage/whosthat/internal/events"
	"github.com/mind-engage/whosthat/internal/game"
	"github.com/mind-engage/whosthat/internal/logging"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Event log (optional) ---
	var recorder events.Recorder = events.Nop{}
	if db.Driver(cfg.DBDriver) != db.DriverNone {
		octx, cancel := context.WithTimeout(ctx, 10*time.Second)
		dbh, err := db.Open(octx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			return fmt.Errorf("db open failed: %w", err)
		}
		defer dbh.Close()
		recorder = events.NewSQLRecorder(dbh)
	}

	// --- Catalog ---
	loader := catalog.NewLoader(catalog.NewHTTPProvider(catalog.HTTPConfig{
		BaseURL: cfg.CatalogBaseURL,
		Limit:   cfg.CatalogLimit,
		Timeout: cfg.CatalogTimeout,
	}), game.OptionCount, logger.Named("catalog"))

	// --- Game ---
	manager := game.NewManager(game.ManagerConfig{
		Catalog:  loader,
		Recorder: recorder,
		Logger:   logger.Named("game"),
		TTL:      cfg.SessionTTL,
	})

	handler := api.NewRouter(api.RouterConfig{
		Game: api.GameDeps{
			Manager:     manager,
			Catalog:     loader,
			ArtworkURL:  cfg.ArtworkURL,
			RevealDelay: cfg.RevealDelay,
		},
		Auth:         auth.NewAuthService(cfg.SessionSecret, cfg.SessionTTL),
		SecureCookie: cfg.Mode == config.ModeOnline,
		CORSOrigins:  cfg.CORSOrigins(),
		Logger:       logger.Named("http"),
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A failed load is reported to players through /api/state; the process stays up.
		_ = loader.Load(gctx)
		return nil
	})
	g.Go(func() error {
		if cfg.SweepInterval <= 0 {
			return nil
		}
		t := time.NewTicker(cfg.SweepInterval)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-t.C:
				if n := manager.Sweep(now); n > 0 {
					logger.Debug("swept idle sessions", zap.Int("removed", n), zap.Int("live", manager.Len()))
				}
			}
		}
	})
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("mode", string(cfg.Mode)),
			zap.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
