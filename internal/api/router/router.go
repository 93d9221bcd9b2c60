package router

import (
	"github.com/hzbay/amqp-acker/internal/api"
	"github.com/hzbay/amqp-acker/internal/api/handlers"
	"github.com/hzbay/amqp-acker/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// Init sets up echo, its middleware and all management routes on s.
func Init(s *api.Server) {
	s.Echo = echo.New()
	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestID())
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRequestID: true,
		LogLatency:   true,
		BeforeNextFunc: func(c echo.Context) {
			l := log.With().Str("id", c.Response().Header().Get(echo.HeaderXRequestID)).Logger()
			c.SetRequest(c.Request().WithContext(util.WithLogger(c.Request().Context(), l)))
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			util.LogFromContext(c.Request().Context()).WithLevel(s.Config.Logger.RequestLevel).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http_request")
			return nil
		},
	}))

	s.Router = &api.Router{
		Routes: nil,
		Root:   s.Echo.Group(""),
		// management endpoints are not part of the public API
		Management: s.Echo.Group("/-"),
	}

	handlers.AttachAllRoutes(s)
}
