// Package snapshotlatest реализует HTTP-обработчик последнего сохранённого снимка дашборда.
package snapshotlatest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/church-dashboard/internal/http/response"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/storage"
)

// Repository описывает чтение последнего снимка.
type Repository interface {
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
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

// ServeHTTP возвращает самый свежий снимок.
//
// @Summary Последний снимок дашборда
// @Description Возвращает самый свежий сохранённый снимок статистики.
// @Tags Dashboard
// @Produce  json
// @Success 200 {object} response.Response{data=models.Snapshot} "Последний снимок"
// @Failure 404 {object} response.Response "Снимков ещё нет"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /dashboard/snapshots/latest [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.snapshotlatest.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	snap, err := h.repo.LatestSnapshot(r.Context())
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		log.Info("no snapshots stored yet")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("no snapshots found"))
		return
	}
	if err != nil {
		log.Error("failed to read latest snapshot", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read latest snapshot"))
		return
	}

	log.Info("latest snapshot", slog.String("id", snap.ID))
	render.JSON(w, r, response.StatusOKWithData(snap))
}
