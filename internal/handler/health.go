package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/deppfellow/customers-api/internal/config"
	"github.com/deppfellow/customers-api/internal/middleware"
	"github.com/deppfellow/customers-api/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// dependencyCheck pings one dependency. required checks flip the overall
// status when they fail.
type dependencyCheck struct {
	name     string
	required bool
	ping     func(ctx context.Context) error
}

type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

// HealthHandler serves GET /status. Dependency checks run at most once per
// configured interval; requests in between get the last report.
type HealthHandler struct {
	Handler

	mu       sync.Mutex
	last     *HealthResponse
	lastCode int
	lastRun  time.Time
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

func (h *HealthHandler) observability() *config.ObservabilityConfig {
	if h.server.Config.Observability == nil {
		return config.DefaultObservabilityConfig()
	}
	return h.server.Config.Observability
}

// dependencyChecks lists the enabled checks whose dependency exists.
func (h *HealthHandler) dependencyChecks() []dependencyCheck {
	obs := h.observability()

	var checks []dependencyCheck
	if h.server.DB != nil && obs.HealthCheckEnabled(config.HealthCheckDatabase) {
		checks = append(checks, dependencyCheck{
			name:     config.HealthCheckDatabase,
			required: true,
			ping:     h.server.DB.Pool.Ping,
		})
	}
	if h.server.Redis != nil && obs.HealthCheckEnabled(config.HealthCheckRedis) {
		checks = append(checks, dependencyCheck{
			name: config.HealthCheckRedis,
			ping: func(ctx context.Context) error { return h.server.Redis.Ping(ctx).Err() },
		})
	}
	return checks
}

func (h *HealthHandler) runChecks(ctx context.Context, c echo.Context) (*HealthResponse, int) {
	obs := h.observability()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	response := &HealthResponse{
		Status:      statusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]CheckResult),
	}

	for _, check := range h.dependencyChecks() {
		checkCtx, cancel := context.WithTimeout(ctx, obs.HealthChecks.Timeout)
		start := time.Now()
		err := check.ping(checkCtx)
		elapsed := time.Since(start)
		cancel()

		if err != nil {
			response.Checks[check.name] = CheckResult{
				Status:       statusUnhealthy,
				ResponseTime: elapsed.String(),
				Error:        err.Error(),
			}
			if check.required {
				response.Status = statusUnhealthy
			}

			logger.Error().Err(err).Str("check", check.name).Dur("response_time", elapsed).
				Msg("health check failed")

			if h.server.LoggerService != nil {
				h.server.LoggerService.RecordEvent("HealthCheckError", map[string]interface{}{
					"check_type":       check.name,
					"operation":        "health_check",
					"error_type":       check.name + "_unhealthy",
					"response_time_ms": elapsed.Milliseconds(),
					"error_message":    err.Error(),
				})
			}
			continue
		}

		response.Checks[check.name] = CheckResult{
			Status:       statusHealthy,
			ResponseTime: elapsed.String(),
		}
		logger.Debug().Str("check", check.name).Dur("response_time", elapsed).Msg("health check passed")
	}

	if response.Status == statusUnhealthy {
		return response, http.StatusServiceUnavailable
	}
	return response, http.StatusOK
}

// CheckHealth answers 200 when every required dependency is reachable and
// 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	interval := h.observability().HealthChecks.Interval

	h.mu.Lock()
	if h.last == nil || interval <= 0 || time.Since(h.lastRun) >= interval {
		h.last, h.lastCode = h.runChecks(c.Request().Context(), c)
		h.lastRun = time.Now()
	}
	response, code := *h.last, h.lastCode
	h.mu.Unlock()

	return c.JSON(code, response)
}
