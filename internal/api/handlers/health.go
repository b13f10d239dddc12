package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *sql.DB
	cache  Pinger
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler. cache may be nil when
// Redis is disabled.
func NewHealthHandler(db *sql.DB, cache Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: log,
	}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Description Check if the application is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is alive"
// @Router /health [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Description Check the database and, when enabled, the session cache
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is ready"
// @Failure 503 {object} utils.ErrorResponse "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteErrorMessage(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database connection failed")
		return
	}

	status := map[string]string{
		"status":   "ready",
		"database": "connected",
	}
	if h.cache != nil {
		// the service falls back to the database when the cache is down
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.WarnWithErr(err, "Session cache ping failed")
			status["cache"] = "unavailable"
		} else {
			status["cache"] = "connected"
		}
	}

	utils.WriteSuccess(w, http.StatusOK, status)
}
