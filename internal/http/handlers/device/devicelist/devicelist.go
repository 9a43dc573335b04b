// Package devicelist реализует HTTP-обработчик списка устройств.
//
// Для сотрудников и охраны список ограничен устройствами вызывающего;
// администратор получает общий реестр с пагинацией через query-параметр
// page. Ответ содержит элементы под ключом docs и количество страниц.
package devicelist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/response"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/sl"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

// Handler управляет HTTP-запросами на получение списка устройств.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списков устройств.
type Service interface {
	// ListForOwner возвращает устройства вызывающего пользователя.
	ListForOwner(ctx context.Context, sess models.Session) ([]*models.Device, error)
	// ListAll возвращает страницу общего реестра и количество страниц.
	ListAll(ctx context.Context, page int) ([]*models.Device, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список устройств
// @Description Возвращает устройства вызывающего. Для admin — общий реестр с пагинацией (?page=N, страницы с 1).
// @Tags Devices
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы (только для admin)"
// @Success 200 {object} map[string]any "Список устройств и количество страниц"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /devices [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.devicelist"
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

	if !sess.IsAdmin() {
		devices, err := h.service.ListForOwner(r.Context(), sess)
		if err != nil {
			log.Error("failed to list devices", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not list devices"))
			return
		}
		log.Info("devices listed for owner", slog.Int("count", len(devices)))
		render.JSON(w, r, response.OKWithData(map[string]any{
			"docs":        devices,
			"total_pages": 1,
		}))
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("invalid page parameter", slog.String("page", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid page parameter"))
			return
		}
		page = parsed
	}

	devices, totalPages, err := h.service.ListAll(r.Context(), page)
	if err != nil {
		log.Error("failed to list all devices", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list devices"))
		return
	}

	log.Info("devices listed", slog.Int("count", len(devices)), slog.Int("total_pages", totalPages))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"docs":        devices,
		"total_pages": totalPages,
	}))
}
