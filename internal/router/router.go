// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seating-planner/internal/config"
	"github.com/iliyamo/seating-planner/internal/handler"
	"github.com/iliyamo/seating-planner/internal/metrics"
	"github.com/iliyamo/seating-planner/internal/middleware"
	"github.com/iliyamo/seating-planner/internal/utils"
)

// Deps holds what the routes need.  Redis may be nil, which turns the
// rate limiter and the response cache into pass-throughs.
type Deps struct {
	Planner   *handler.PlannerHandler
	JWTSecret string
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Checks    map[string]handler.Check
}

// RegisterRoutes registers the unauthenticated endpoints: health, the
// Prometheus scrape endpoint and the cached geometry previews.
func RegisterRoutes(e *echo.Echo, d Deps) {
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.GET("/healthz", handler.Health(d.Checks))
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	geo := e.Group("/v1/geometry", middleware.NewRedisCache(d.Cache, d.Redis))
	geo.GET("/round", handler.RoundPreview)
	geo.GET("/rectangle", handler.RectanglePreview)
}

// RegisterPlanner registers the planner endpoints under
// /v1/events/:event_id.  Every route needs a PLANNER or ADMIN token and
// is subject to the token bucket.
func RegisterPlanner(e *echo.Echo, d Deps) {
	p := d.Planner
	g := e.Group(
		"/v1/events/:event_id",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(utils.RolePlanner, utils.RoleAdmin),
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
	)

	// ---- Sessions ----
	g.POST("/sessions", p.CreateSession)
	g.GET("/sessions/:session_id", p.GetSession)
	g.DELETE("/sessions/:session_id", p.DeleteSession)
	g.POST("/sessions/:session_id/tables", p.AddTable)

	// ---- Seats ----
	g.POST("/sessions/:session_id/assignments/validate", p.ValidateAssignment)
	g.PUT("/sessions/:session_id/seats/:seat_id/guest", p.AssignGuest)
	g.DELETE("/sessions/:session_id/seats/:seat_id/guest", p.ClearSeat)
	g.PUT("/sessions/:session_id/seats/:seat_id/lock", p.SetSeatLock)
	g.PUT("/sessions/:session_id/seats/:seat_id/mode", p.SetSeatMode)

	// ---- Swaps ----
	g.POST("/sessions/:session_id/swaps/validate", p.ValidateSwap)
	g.POST("/sessions/:session_id/swaps/predict", p.PredictSwap)
	g.POST("/sessions/:session_id/swaps", p.Swap)
	g.GET("/sessions/:session_id/seats/:seat_id/swap-candidates", p.SwapCandidates)

	g.GET("/sessions/:session_id/violations", p.Violations)
	g.POST("/sessions/:session_id/finalize", p.Finalize)

	// ---- Tracking ----
	g.PUT("/tracking/guests/:guest_id", p.SetGuestTracked)
	g.GET("/tracking/guests/:guest_id/history", p.GuestHistory)
	g.GET("/tracking/reviews", p.SessionsNeedingReview)
	g.POST("/tracking/reviews/:session_id/ack", p.AcknowledgeReview)
}
