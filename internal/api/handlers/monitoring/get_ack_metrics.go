package monitoring

import (
	"net/http"

	"github.com/hzbay/amqp-acker/internal/api"
	"github.com/hzbay/amqp-acker/internal/util"
	"github.com/labstack/echo/v4"
)

// GetAckMetricsRoute creates the route for getting acknowledgment metrics
func GetAckMetricsRoute(s *api.Server) *echo.Route {
	handler := NewHandler(s.AckMonitor, s.Clock)
	return s.Router.Management.GET("/monitoring/acks", handler.GetAckMetrics)
}

// GetAckMetrics handles GET /-/monitoring/acks requests
func (h *Handler) GetAckMetrics(c echo.Context) error {
	ctx := c.Request().Context()
	log := util.LogFromContext(ctx)

	metricsJSON, err := h.monitor.ExportMetrics()
	if err != nil {
		log.Error().Err(err).Msg("Failed to export ack metrics")
		return err
	}

	log.Debug().
		Int("size", len(metricsJSON)).
		Msg("Retrieved ack metrics")

	return c.JSONBlob(http.StatusOK, metricsJSON)
}
