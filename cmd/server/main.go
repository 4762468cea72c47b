package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/seating-planner/internal/config"
	"github.com/iliyamo/seating-planner/internal/database"
	"github.com/iliyamo/seating-planner/internal/handler"
	"github.com/iliyamo/seating-planner/internal/metrics"
	"github.com/iliyamo/seating-planner/internal/queue"
	"github.com/iliyamo/seating-planner/internal/repository"
	"github.com/iliyamo/seating-planner/internal/router"
	"github.com/iliyamo/seating-planner/internal/service"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := config.NewLogger(cfg.Log)
	ctx := context.Background()
	checks := map[string]handler.Check{}

	var plans service.PlanStore
	switch cfg.PlanStore {
	case "memory":
		log.Warn("PLAN_STORE=memory: session plans are lost on restart")
		plans = repository.NewMemoryPlanStore()
	default:
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			log.WithError(err).Fatal("connect mysql")
		}
		defer db.Close()
		repo := repository.NewPlanRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("ensure schema")
		}
		plans = repo
		checks["mysql"] = db.PingContext
	}

	var tracking service.TrackingStore = repository.NewMemoryTrackingStore()
	rdb := config.NewRedisClient(cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
		tracking = repository.NewTrackingStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn("tracking state kept in memory; rate limiting and caching disabled")
	}

	var publisher service.EventPublisher
	if cfg.Queue.URL != "" {
		publisher = queue.NewPublisher(cfg.Queue.URL, log)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	planner := service.NewPlanner(plans, tracking, publisher, m, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	deps := router.Deps{
		Planner:   handler.NewPlannerHandler(planner),
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		RateLimit: cfg.RateLimit,
		Cache:     cfg.Cache,
		Metrics:   m,
		Gatherer:  prometheus.DefaultGatherer,
		Checks:    checks,
	}
	router.RegisterRoutes(e, deps)
	router.RegisterPlanner(e, deps)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "plan_store": cfg.PlanStore}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
