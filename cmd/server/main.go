package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockfolio/internal/auth"
	"mockfolio/internal/config"
	"mockfolio/internal/fixtures"
	"mockfolio/internal/handlers"
	"mockfolio/internal/logging"
	"mockfolio/internal/metrics"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "text").Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := fixtures.Open(ctx, fixtures.Options{
		Source:      cfg.FixtureSource,
		Dir:         cfg.FixtureDir,
		PostgresURL: cfg.PostgresURL,
	}, logger)
	if err != nil {
		logger.Fatalf("load fixtures: %v", err)
	}

	m := metrics.New()
	h := handlers.NewHandler(set, logger, handlers.Options{
		Issuer:         auth.NewIssuer(cfg.TokenTTL),
		Metrics:        m,
		SessionSeconds: cfg.SessionCountdown,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, m, cfg.APIPrefix),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("server starting on :%s (prefix %q, fixtures %s)", cfg.Port, cfg.APIPrefix, cfg.FixtureSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
