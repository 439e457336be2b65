package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/fantasy/config"
	_ "github.com/DhavalSuthar-24/fantasy/docs"
	"github.com/DhavalSuthar-24/fantasy/internal/app"
	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	mw "github.com/DhavalSuthar-24/fantasy/internal/middleware"
	"github.com/DhavalSuthar-24/fantasy/routes"
)

// @title Fantasy League REST API
// @version 1.0
// @description Gameweek lifecycle, squads, transfers and scoring for a fantasy football league.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}
	cfg := config.GetConfig()
	log := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := app.Open(cfg, config.DB)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	a, err := app.New(cfg, store, config.DB, log)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	if err := a.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	scheduler := gameweek.NewScheduler(ctx, a.Gameweeks, log)
	if err := scheduler.Register(cfg.Game.SweepSchedule); err != nil {
		log.Fatalf("Failed to schedule gameweek sweep: %v", err)
	}
	scheduler.Start()

	limiter := mw.NewRateLimiter(cfg.Game.RateLimitPerMinute, log)
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           routes.SetupRoutes(a, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.App.Port, "env": cfg.App.Env, "driver": cfg.DB.Driver}).
			Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	scheduler.Stop()
}
