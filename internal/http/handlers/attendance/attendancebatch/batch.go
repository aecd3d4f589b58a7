// Package attendancebatch реализует HTTP-обработчик пакетной отметки посещения.
//
// Handler проверяет тело запроса, передаёт пакет сервису и возвращает
// итог по каждой отметке. Если часть отметок не создана, ответ имеет
// статус 207 Multi-Status.
package attendancebatch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/church-dashboard/internal/http/response"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/services/attendance"
)

// Service описывает отправку пакета отметок.
type Service interface {
	Submit(ctx context.Context, batch models.AttendanceBatch) (*attendance.BatchResult, error)
}

// Handler обрабатывает пакетные отметки посещения.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис отправки отметок во внешний API
	validate *validator.Validate // Валидатор тела запроса
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// @Summary Пакетная отметка посещения
// @Description Создаёт отметки посещения во внешнем API. Если часть отметок не создана, возвращается 207 с ошибкой по каждой.
// @Tags Attendance
// @Accept  json
// @Produce  json
// @Param request body models.AttendanceBatch true "Пакет отметок"
// @Success 200 {object} response.Response{data=attendance.BatchResult} "Все отметки созданы"
// @Success 207 {object} response.Response{data=attendance.BatchResult} "Часть отметок не создана"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибка валидации"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Failure 502 {object} response.Response "Ни одна отметка не создана"
// @Router /attendance/batch [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendancebatch.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.AttendanceBatch
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			log.Warn("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}
		log.Error("failed to validate request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	res, err := h.service.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidBatch) {
			log.Warn("invalid attendance batch", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to submit attendance batch", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit attendance"))
		return
	}

	switch {
	case res.Failed == 0:
		render.JSON(w, r, response.StatusOKWithData(res))
	case res.Succeeded > 0:
		log.Warn("attendance batch partially failed", slog.Int("failed", res.Failed))
		render.Status(r, http.StatusMultiStatus)
		render.JSON(w, r, response.ErrorWithData("some attendance records were not created", res))
	default:
		log.Error("attendance batch failed", slog.Int("failed", res.Failed))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.ErrorWithData("no attendance records were created", res))
	}
}
