package handler

import (
    "context"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/GTDGit/catalog_api/internal/utils"
)

var startTime = time.Now()

// Pinger reports whether a backing store is reachable.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
    db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
    return &HealthHandler{db: db}
}

// GetHealth responds with service and database status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
    ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
    defer cancel()

    if err := h.db.PingContext(ctx); err != nil {
        utils.Error(c, 503, "SERVICE_UNAVAILABLE", "Database is unreachable")
        return
    }

    utils.Success(c, 200, "Service is healthy", gin.H{
        "status":  "healthy",
        "version": "1.0.0",
        "uptime":  int(time.Since(startTime).Seconds()),
        "database": gin.H{
            "status": "connected",
        },
    })
}
