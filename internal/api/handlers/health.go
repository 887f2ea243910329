package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deptsite/deptcms/internal/api/response"
	"github.com/deptsite/deptcms/internal/core/schema"
)

// Version is reported by the status endpoints.
const Version = "1.0.0"

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	registry *schema.Registry
	storage  Pinger
	now      func() time.Time
}

func NewHealthHandler(registry *schema.Registry, storage Pinger) *HealthHandler {
	return &HealthHandler{registry: registry, storage: storage, now: time.Now}
}

// Root describes the API and lists one endpoint per resource.
func (h *HealthHandler) Root(c *gin.Context) {
	endpoints := make(map[string]string)
	for _, name := range h.registry.Names() {
		endpoints[name] = "/api/" + name
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "CS Department API is running!",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"version":   Version,
		"endpoints": endpoints,
	})
}

// Health reports whether storage answers a ping.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		response.Error(c, err, "checking storage")
		return
	}
	response.JSON(c, http.StatusOK, response.Envelope{
		Success: true,
		Message: "ok",
		Data:    gin.H{"status": "ok", "storage": "up"},
	})
}
