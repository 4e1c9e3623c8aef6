package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// Health reports liveness and whether the store answers a ping.
func (h *Handler) Health(c *gin.Context) {
	state := "connected"
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			h.log.Warn("storage ping failed", "error", err)
			state = "disconnected"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Server is running",
		"env":     h.Env,
		"storage": state,
		"driver":  h.StorageName,
	})
}
