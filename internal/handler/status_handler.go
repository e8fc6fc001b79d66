package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tdiessongo25/peakcrews-chat/internal/hub"
)

type StatusHandler interface {
	Healthz(c *gin.Context)
}

type statusHandler struct {
	hub *hub.Hub
}

func NewStatusHandler(h *hub.Hub) StatusHandler {
	return &statusHandler{hub: h}
}

// Healthz reports liveness plus a snapshot of the relay state.
func (h *statusHandler) Healthz(c *gin.Context) {
	stats := h.hub.Stats()

	status := "healthy"
	if stats.Connections == 0 {
		status = "idle"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"hub":    stats,
	})
}
