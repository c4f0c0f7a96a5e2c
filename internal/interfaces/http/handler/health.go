package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks a dependency's liveness
type Pinger interface {
	Ping() error
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	serviceName string
	db          Pinger
}

// NewHealthHandler creates a new HealthHandler. db may be nil for
// services without a database.
func NewHealthHandler(serviceName string, db Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, db: db}
}

// RegisterRoutes registers the health route on the root group
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health reports service health, degraded when the database is down
func (h *HealthHandler) Health(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"service": h.serviceName,
		"status":  status,
	})
}
