package handlers

import (
	"github.com/hzbay/amqp-acker/internal/api"
	"github.com/hzbay/amqp-acker/internal/api/handlers/monitoring"
	"github.com/labstack/echo/v4"
)

func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		monitoring.GetAckMetricsRoute(s),
		monitoring.GetQueueHealthRoute(s),
	}
}
