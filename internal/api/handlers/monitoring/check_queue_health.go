package monitoring

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/hzbay/amqp-acker/internal/api"
	"github.com/hzbay/amqp-acker/internal/types"
	"github.com/hzbay/amqp-acker/internal/util"
	"github.com/labstack/echo/v4"
)

// GetQueueHealthRoute creates the route for queue health check
func GetQueueHealthRoute(s *api.Server) *echo.Route {
	handler := NewHandler(s.AckMonitor, s.Clock)
	return s.Router.Management.GET("/monitoring/queue/health", handler.CheckQueueHealth)
}

// CheckQueueHealth handles GET /-/monitoring/queue/health requests
func (h *Handler) CheckQueueHealth(c echo.Context) error {
	ctx := c.Request().Context()
	log := util.LogFromContext(ctx)

	start := h.clock.Now()
	err := h.monitor.HealthCheck(ctx)
	now := h.clock.Now()
	duration := now.Sub(start)
	timestamp := strfmt.DateTime(now)

	if err != nil {
		log.Error().Err(err).Msg("Queue health check failed")

		errorResponse := &types.QueueHealthResponse{
			Healthy:    swag.Bool(false),
			Error:      err.Error(),
			DurationMs: swag.Int64(duration.Milliseconds()),
			Timestamp:  &timestamp,
		}

		return util.ValidateAndReturn(c, http.StatusServiceUnavailable, errorResponse)
	}

	log.Debug().
		Dur("duration", duration).
		Msg("Queue health check passed")

	response := &types.QueueHealthResponse{
		Healthy:    swag.Bool(true),
		DurationMs: swag.Int64(duration.Milliseconds()),
		Timestamp:  &timestamp,
	}

	return util.ValidateAndReturn(c, http.StatusOK, response)
}
