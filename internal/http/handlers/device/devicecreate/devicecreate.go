// Package devicecreate реализует HTTP-обработчик регистрации устройства.
//
// Handler принимает JSON-запрос с данными устройства, валидирует их,
// извлекает сессию пользователя из контекста, вызывает бизнес-логику
// регистрации и возвращает ID созданной записи в JSON-формате.
package devicecreate

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
)

// Handler управляет HTTP-запросами на регистрацию устройств.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики реестра устройств
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики регистрации устройства.
type Service interface {
	Register(ctx context.Context, sess models.Session, req models.DummyDevice) (string, error)
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
// @Summary Зарегистрировать устройство
// @Description Регистрирует устройство на вызывающего пользователя. Указать другого владельца может только admin.
// @Tags Devices
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyDevice true "Данные нового устройства"
// @Success 200 {object} map[string]any "ID созданного устройства"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /devices [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.devicecreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyDevice
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

	id, err := h.service.Register(r.Context(), sess, req)
	if err != nil {
		if errors.Is(err, models.ErrAccessDenied) {
			log.Error("access denied", slog.String("user", sess.UserUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
			return
		}
		log.Error("failed to register device", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register device"))
		return
	}

	log.Info("registered new device", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
