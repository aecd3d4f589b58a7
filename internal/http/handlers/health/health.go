// Package health реализует проверку готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/church-dashboard/internal/http/response"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
)

const checkTimeout = 2 * time.Second

// Check проверяет доступность одной зависимости.
type Check func(ctx context.Context) error

type Handler struct {
	log    *slog.Logger
	checks map[string]Check
}

// New создает Handler. checks — проверки зависимостей по именам.
func New(log *slog.Logger, checks map[string]Check) *Handler {
	return &Handler{
		log:    log,
		checks: checks,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.ServeHTTP"

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	components := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warn("health check failed", slog.String("op", op), slog.String("component", name), sl.Err(err))
			components[name] = err.Error()
			healthy = false
			continue
		}
		components[name] = "ok"
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.ErrorWithData("unhealthy", components))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status":     "ok",
		"components": components,
	}))
}
