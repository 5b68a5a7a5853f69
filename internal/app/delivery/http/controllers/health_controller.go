package controllers

import (
	"context"
	"net/http"
	"sort"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	Log       *zap.Logger
	Version   string
	StartedAt time.Time
	Checks    map[string]HealthCheck
}

func NewHealthController(logger *zap.Logger, version string, checks map[string]HealthCheck) *HealthController {
	return &HealthController{
		Log:       logger,
		Version:   version,
		StartedAt: time.Now(),
		Checks:    checks,
	}
}

// Healthz answers 200 while every check passes and 503 otherwise.
func (ctrl *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(ctrl.Checks))
	for name := range ctrl.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	health := &responses.Health{
		Status:    constvars.HealthCheckSuccessMessage,
		Version:   ctrl.Version,
		Uptime:    time.Since(ctrl.StartedAt).Round(time.Second).String(),
		Resources: make(map[string]string, len(names)),
	}
	code := constvars.StatusOK
	for _, name := range names {
		if err := ctrl.Checks[name](ctx); err != nil {
			ctrl.Log.Warn("health check failed",
				zap.String("resource", name),
				zap.Error(err))
			health.Resources[name] = "down"
			health.Status = "degraded"
			code = constvars.StatusServiceUnavailable
			continue
		}
		health.Resources[name] = "up"
	}

	utils.BuildSuccessResponse(w, code, health.Status, health)
}
