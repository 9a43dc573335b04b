// Package passcreate реализует HTTP-обработчик создания пропуска.
//
// Handler принимает JSON-запрос с устройством и датами, валидирует их,
// извлекает сессию пользователя из контекста и вызывает бизнес-логику
// создания пропуска. Конфликт с существующим активным пропуском
// возвращается клиенту фиксированным советом без автоповтора.
package passcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/response"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/sl"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
	"github.com/magabrotheeeer/device-pass-manager/internal/services/pass"
	"github.com/magabrotheeeer/device-pass-manager/internal/storage/repository"
)

// Handler управляет HTTP-запросами на создание пропусков.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики пропусков
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания пропуска.
type Service interface {
	Create(ctx context.Context, sess models.Session, req models.DummyPass) (*models.Pass, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать пропуск
// @Description Создает пропуск для устройства. Даты календарные, включительно с обеих сторон; пересечение с активным пропуском отклоняется.
// @Tags Passes
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyPass true "Данные нового пропуска"
// @Success 200 {object} map[string]any "Созданный пропуск"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Устройство не найдено"
// @Failure 409 {object} response.ErrorResponse "Пересечение с существующим пропуском"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /passes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pass.passcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPass
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		log.Error("session not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	created, err := h.service.Create(r.Context(), sess, req)
	if err != nil {
		switch {
		case errors.Is(err, pass.ErrInvalidDateRange):
			log.Error("invalid date range", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("start date must not be after end date"))
		case errors.Is(err, pass.ErrStartDateInPast):
			log.Error("start date in past", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("start date must not be before today"))
		case errors.Is(err, repository.ErrPassOverlap):
			log.Error("pass overlaps an existing pass", slog.String("device", req.Device))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("pass dates overlap an existing pass, check existing passes or contact an administrator"))
		case errors.Is(err, repository.ErrDeviceNotFound):
			log.Error("device not found", slog.String("device", req.Device))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("device not found"))
		case errors.Is(err, models.ErrAccessDenied):
			log.Error("access denied", slog.String("user", sess.UserUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to create pass", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create pass"))
		}
		return
	}

	log.Info("created new pass", slog.String("id", created.ID), slog.String("label", created.Label))
	render.JSON(w, r, response.OKWithData(created))
}
