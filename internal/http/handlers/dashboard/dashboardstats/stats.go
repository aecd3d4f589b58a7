// Package dashboardstats реализует HTTP-обработчик статистики дашборда.
//
// Обработчик принимает необязательные параметры at (RFC3339) и refresh,
// вызывает сервис дашборда и возвращает метрики вместе со списком
// источников, которые не удалось получить. Без at статистика считается
// на текущий момент сервиса.
package dashboardstats

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/church-dashboard/internal/http/response"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/services/dashboard"
)

// Service описывает интерфейс сервиса дашборда. Нулевой at означает текущий момент.
type Service interface {
	Stats(ctx context.Context, at time.Time, refresh bool) (*dashboard.Result, error)
}

// Handler обрабатывает запросы статистики дашборда.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает статистику дашборда.
//
// @Summary Статистика дашборда
// @Description Считает показатели посещаемости, пожертвований, мероприятий и численности общины. Недоступные источники перечисляются в failures.
// @Tags Dashboard
// @Produce  json
// @Param at query string false "Момент расчёта в формате RFC3339"
// @Param refresh query bool false "Пересчитать, минуя кэш"
// @Success 200 {object} response.Response{data=dashboard.Result} "Статистика дашборда"
// @Failure 400 {object} response.Response "Некорректные параметры запроса"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Failure 502 {object} response.Response "Все источники недоступны"
// @Router /dashboard/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboardstats.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var at time.Time
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			log.Warn("failed to parse at parameter", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("parameter at must be RFC3339"))
			return
		}
		at = parsed
	}

	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			log.Warn("failed to parse refresh parameter", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("parameter refresh must be boolean"))
			return
		}
		refresh = parsed
	}

	res, err := h.service.Stats(r.Context(), at, refresh)
	if err != nil {
		log.Error("failed to compute dashboard stats", sl.Err(err))
		if errors.Is(err, dashboard.ErrAllSourcesFailed) {
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("all data sources are unavailable"))
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not compute dashboard stats"))
		return
	}

	log.Info("dashboard stats computed", slog.Int("failures", len(res.Failures)))
	render.JSON(w, r, response.StatusOKWithData(res))
}
