package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type cachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health checks.
type HealthHandler struct {
	db             pinger
	cache          cachePinger
	activeProvider func() string
	checkTimeout   time.Duration
}

// NewHealthHandler takes the send log database, the result cache (nil when
// disabled) and a func reporting the active provider name.
func NewHealthHandler(db pinger, cache cachePinger, activeProvider func() string) *HealthHandler {
	return &HealthHandler{
		db:             db,
		cache:          cache,
		activeProvider: activeProvider,
		checkTimeout:   2 * time.Second,
	}
}

// Health returns overall status and basic component statuses.
// @Summary Health check
// @Description Returns overall status with DB and Redis connectivity and the active provider
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
		overallStatus = "down"
	} else if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "down"
		overallStatus = "down"
	}

	redisStatus := "disabled"
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			redisStatus = "down"
			if overallStatus == "ok" {
				overallStatus = "degraded"
			}
		} else {
			redisStatus = "up"
		}
	}

	active := ""
	if h.activeProvider != nil {
		active = h.activeProvider()
	}
	providerStatus := "up"
	if active == "" {
		providerStatus = "down"
		overallStatus = "down"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"database": map[string]any{
				"status": dbStatus,
			},
			"redis": map[string]any{
				"status": redisStatus,
			},
			"provider": map[string]any{
				"status": providerStatus,
				"name":   active,
			},
		},
	})
}
