package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// Handler serves liveness and readiness probes.
type Handler struct {
	db       *gorm.DB
	service  string
	checkers map[string]Checker
}

// NewHandler creates a health Handler that pings db on readiness.
func NewHandler(db *gorm.DB, service string) *Handler {
	return &Handler{db: db, service: service, checkers: map[string]Checker{}}
}

// AddChecker registers an extra readiness dependency.
func (h *Handler) AddChecker(name string, check Checker) {
	h.checkers[name] = check
}

// RegisterRoutes registers /health and /health/ready.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Live)
	r.GET("/health/ready", h.Ready)
}

// Live always reports ok while the process serves requests.
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.service})
}

// Ready reports ok only when every dependency answers.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "service": h.service, "checks": checks})
}
