// Package snapshotlist реализует HTTP-обработчик списка сохранённых снимков дашборда.
package snapshotlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/church-dashboard/internal/http/response"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/models"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Repository описывает чтение снимков.
type Repository interface {
	ListSnapshots(ctx context.Context, limit, offset int) ([]*models.Snapshot, error)
}

type Handler struct {
	log  *slog.Logger
	repo Repository
}

func New(log *slog.Logger, repo Repository) *Handler {
	return &Handler{
		log:  log,
		repo: repo,
	}
}

// @Summary Список снимков дашборда
// @Description Возвращает сохранённые снимки статистики, от новых к старым.
// @Tags Dashboard
// @Produce  json
// @Param limit query int false "Количество снимков (по умолчанию 10, не больше 100)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список снимков"
// @Failure 500 {object} response.Response "Ошибка хранилища"
// @Router /dashboard/snapshots [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.snapshotlist.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	res, err := h.repo.ListSnapshots(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list snapshots", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list snapshots"))
		return
	}

	log.Info("list snapshots", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"snapshots":  res,
	}))
}
