package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/app"
	"github.com/BruksfildServices01/lesson-scheduler/internal/config"
	"github.com/BruksfildServices01/lesson-scheduler/internal/logging"
	"github.com/BruksfildServices01/lesson-scheduler/internal/obs"
	"github.com/BruksfildServices01/lesson-scheduler/internal/routes"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, "lesson-scheduler-api", cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}

	infra, err := app.NewInfra(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init infra", zap.Error(err))
	}
	defer infra.Close()

	svc := app.NewServices(infra, cfg, logger, timezone.SystemClock{})
	defer svc.Close()

	scheduler := app.NewScheduler(logger,
		svc.SweepJob(cfg.SweepInterval, logger),
		svc.ReconcileJob(15*time.Minute),
	)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if !cfg.IsProduction() {
		r.Use(gin.Logger())
	}

	routes.RegisterRoutes(r, svc, infra.Checks, cfg, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", zap.String("addr", cfg.Addr()), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown", zap.Error(err))
	}
}
