// Package passlist реализует HTTP-обработчик списка пропусков устройства.
//
// Список возвращается в порядке создания, каждый элемент несёт
// вычисленный на момент ответа признак isCurrentlyValid.
package passlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/response"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/sl"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
	"github.com/magabrotheeeer/device-pass-manager/internal/storage/repository"
)

// Handler управляет HTTP-запросами на получение пропусков устройства.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка пропусков.
type Service interface {
	List(ctx context.Context, sess models.Session, deviceID string) ([]*models.Pass, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Пропуска устройства
// @Description Возвращает пропуска устройства в порядке создания с вычисленным isCurrentlyValid.
// @Tags Passes
// @Produce  json
// @Security BearerAuth
// @Param device query string true "ID устройства"
// @Success 200 {object} map[string]any "Список пропусков"
// @Failure 400 {object} response.ErrorResponse "Не указано устройство"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Устройство не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /passes/by-device [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pass.passlist"
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

	deviceID := r.URL.Query().Get("device")
	if deviceID == "" {
		log.Error("missing device parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing device parameter"))
		return
	}

	passes, err := h.service.List(r.Context(), sess, deviceID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDeviceNotFound):
			log.Error("device not found", slog.String("device", deviceID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("device not found"))
		case errors.Is(err, models.ErrAccessDenied):
			log.Error("access denied", slog.String("user", sess.UserUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to list passes", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not list passes"))
		}
		return
	}

	log.Info("passes listed", slog.String("device", deviceID), slog.Int("count", len(passes)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"docs": passes,
	}))
}
