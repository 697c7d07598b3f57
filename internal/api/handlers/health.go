package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/athebyme/shopify-product-service/internal/utils"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

// HealthCheck проверка одной зависимости
type HealthCheck func(ctx context.Context) error

// CacheHealthCheck считает кэш живым, если чтение отвечает попаданием или промахом
func CacheHealthCheck(cache interfaces.CachePort) HealthCheck {
	return func(ctx context.Context) error {
		_, err := cache.Get(ctx, "healthcheck")
		if err == nil || errors.Is(err, utils.ErrCacheMiss) {
			return nil
		}
		return err
	}
}

// HealthHandler отдает состояние сервиса
type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler создает обработчик проверки здоровья
func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{version: version, checks: checks, timeout: 2 * time.Second}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Health GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Version: h.version}
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}

// Head HEAD /health
func (h *HealthHandler) Head(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
