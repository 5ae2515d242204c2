package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightproxy/internal/handler"
	"github.com/dharmasatrya/flightproxy/internal/ratelimit"
)

const msgRateLimited = "Too many requests"

type Options struct {
	Search *handler.SearchHandler
	Log    zerolog.Logger

	// ClientLimiter throttles inbound requests per client IP. Nil disables it.
	ClientLimiter *ratelimit.KeyedLimiter
}

// New wires middleware and routes onto a fresh echo instance.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opts.Log)

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger(opts.Log))

	if opts.ClientLimiter != nil {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/health"
			},
			Store: opts.ClientLimiter,
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusForbidden, err.Error())
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, msgRateLimited)
			},
		}))
	}

	api := e.Group("/api")
	api.POST("/flights", opts.Search.Search)
	api.POST("/flights/results", opts.Search.StoreResults)
	api.GET("/flights/results", opts.Search.Results)
	api.GET("/airports", opts.Search.Airports)

	e.GET("/health", handler.HealthHandler)

	return e
}
