package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/deppfellow/orgdir/internal/middleware"
	"github.com/deppfellow/orgdir/internal/server"
	"github.com/labstack/echo/v4"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

type HealthHandler struct {
	Handler
	checks map[string]CheckFunc
}

// NewHealthHandler registers the database and redis probes that are both
// configured in observability.health_checks and available at runtime.
func NewHealthHandler(s *server.Server) *HealthHandler {
	checks := make(map[string]CheckFunc)
	obs := s.Config.Observability

	if obs == nil || obs.HasCheck("database") {
		if s.DB != nil {
			checks["database"] = s.DB.Pool.Ping
		}
	}
	if obs == nil || obs.HasCheck("redis") {
		if s.Redis != nil {
			checks["redis"] = func(ctx context.Context) error { return s.Redis.Ping(ctx).Err() }
		}
	}

	return newHealthHandler(s, checks)
}

func newHealthHandler(s *server.Server, checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
	}
}

func (h *HealthHandler) timeout() time.Duration {
	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Timeout > 0 {
		return obs.HealthChecks.Timeout
	}
	return 5 * time.Second
}

// CheckHealth answers 200 when every probe passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]any, len(names))
	healthy := true

	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
		checkStart := time.Now()
		err := h.checks[name](ctx)
		cancel()

		result := map[string]any{
			"status":        "healthy",
			"response_time": time.Since(checkStart).String(),
		}
		if err != nil {
			healthy = false
			result["status"] = "unhealthy"
			result["error"] = err.Error()

			logger.Error().Err(err).Str("check", name).Dur("response_time", time.Since(checkStart)).Msg("health check failed")
			h.recordFailure(name, err, time.Since(checkStart))
		}
		results[name] = result
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      results,
	}

	if !healthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(check string, err error, elapsed time.Duration) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
