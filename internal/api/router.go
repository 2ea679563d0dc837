// Package api exposes the desk commands over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/internal/config"
	"github.com/xraph/skydesk/internal/middleware"
)

// Options configures the router.
type Options struct {
	JWTSecret string
	Logger    *slog.Logger
	RateLimit config.RateLimitConfig
	// Redis backs the rate limiter. Nil disables rate limiting.
	Redis *redis.Client
	// Metrics is served at GET /metrics when set.
	Metrics http.Handler
}

// Handler serves the desk commands.
type Handler struct {
	desk   *skydesk.Desk
	logger *slog.Logger
}

// NewRouter builds the echo instance with every route registered.
func NewRouter(d *skydesk.Desk, opts Options) *echo.Echo {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{desk: d, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	e.GET("/healthz", h.Health)
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}

	auth := e.Group("",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RateLimit(opts.RateLimit, opts.Redis, logger),
	)
	staff := middleware.RequireRole(middleware.RoleStaff)

	auth.GET("/points/leaderboard", h.Leaderboard)
	auth.GET("/points/:id", h.Balance)
	auth.POST("/points/:id/credit", h.Credit, staff)
	auth.POST("/points/:id/debit", h.Debit, staff)
	auth.POST("/points/:id/reset", h.Reset, staff)

	auth.GET("/flights", h.ListFlights)
	auth.POST("/flights", h.AddFlight, staff)
	auth.DELETE("/flights/:code", h.RemoveFlight, staff)
	auth.GET("/board", h.Board)

	auth.POST("/bookings", h.Book)
	auth.GET("/bookings", h.MyBookings)
	auth.GET("/bookings/:code", h.GetBooking)

	auth.POST("/tickets", h.OpenTicket)
	auth.POST("/tickets/close", h.CloseTicket, staff)

	auth.POST("/announcements", h.Announce, staff)
	auth.PATCH("/announcements/:message_id", h.UpdateAnnouncement, staff)

	return e
}

// Health handles GET /healthz.
func (h *Handler) Health(c echo.Context) error {
	if err := h.desk.Store().Ping(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
