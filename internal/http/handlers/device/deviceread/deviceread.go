// Package deviceread реализует HTTP-обработчик чтения устройства по ID.
package deviceread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/response"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/sl"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
	"github.com/magabrotheeeer/device-pass-manager/internal/storage/repository"
)

// Handler управляет HTTP-запросами на чтение устройства.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения устройства.
type Service interface {
	Get(ctx context.Context, sess models.Session, id string) (*models.Device, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Устройство по ID
// @Description Возвращает устройство вместе с владельцем. Доступно владельцу, security и admin.
// @Tags Devices
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID устройства"
// @Success 200 {object} map[string]any "Устройство"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Устройство не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /devices/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.deviceread"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		log.Error("session not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	device, err := h.service.Get(r.Context(), sess, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDeviceNotFound):
			log.Error("device not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("device not found"))
		case errors.Is(err, models.ErrAccessDenied):
			log.Error("access denied", slog.String("user", sess.UserUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to read device", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read device"))
		}
		return
	}

	log.Info("device read", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(device))
}
