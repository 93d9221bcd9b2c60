package monitoring

import (
	"github.com/dropbox/godropbox/time2"
	"github.com/hzbay/amqp-acker/internal/queue"
)

// Handler handles monitoring requests
type Handler struct {
	monitor *queue.AckMonitor
	clock   time2.Clock
}

// NewHandler creates a new monitoring handler
func NewHandler(monitor *queue.AckMonitor, clock time2.Clock) *Handler {
	return &Handler{
		monitor: monitor,
		clock:   clock,
	}
}
