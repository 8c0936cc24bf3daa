package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Skufu/pcos-risk/internal/assessment"
	"github.com/Skufu/pcos-risk/internal/config"
	"github.com/Skufu/pcos-risk/internal/features"
	"github.com/Skufu/pcos-risk/internal/logging"
	"github.com/Skufu/pcos-risk/internal/scoring"
	"github.com/Skufu/pcos-risk/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	var (
		db       HealthChecker
		recorder Recorder
	)
	if cfg.EnableDB {
		st, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		db, recorder = st, st
	}

	a := &api{
		engine:   loadEngine(cfg.Artifacts, logger),
		recorder: recorder,
		logger:   logger,
	}

	staticRoot := detectStaticRoot()
	router := setupRouter(a, db, staticRoot)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server listening",
		zap.String("port", cfg.Port),
		zap.String("staticRoot", staticRoot),
		zap.Bool("storage", recorder != nil))
	if err := serve(ctx, server, logger); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

// loadEngine keeps the server up when the artifacts are unusable so that
// health checks still answer; predictions then fail with the load error.
func loadEngine(art config.Artifacts, logger *zap.Logger) Assessor {
	engine, err := assessment.Load(art, logger)
	if err != nil {
		logger.Error("model artifacts unavailable", zap.Error(err))
		return unavailable{err: err}
	}
	return engine
}

type unavailable struct {
	err error
}

func (u unavailable) Assess(features.PartialInput) (scoring.Result, error) {
	return scoring.Result{}, u.err
}

// serve runs server until ctx is cancelled, then drains it.
func serve(ctx context.Context, server *http.Server, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
