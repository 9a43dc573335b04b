// Package passprint реализует HTTP-обработчик печатной карточки пропуска.
//
// В отличие от остальных обработчиков ответ не JSON, а автономный
// HTML-документ, который сам открывает диалог печати.
package passprint

import (
	"context"
	"errors"
	"io"
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

// Handler управляет HTTP-запросами на печать пропуска.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики печати пропуска.
type Service interface {
	RenderCard(ctx context.Context, sess models.Session, passID string, w io.Writer) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Печатная карточка пропуска
// @Description Возвращает HTML-карточку пропуска с проверочным QR-кодом, открывающую диалог печати.
// @Tags Passes
// @Produce  html
// @Security BearerAuth
// @Param id path string true "ID пропуска"
// @Success 200 {string} string "HTML-карточка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пропуск не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /passes/{id}/print [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pass.passprint"
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

	passID := chi.URLParam(r, "id")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.service.RenderCard(r.Context(), sess, passID, w); err != nil {
		w.Header().Del("Content-Type")
		switch {
		case errors.Is(err, repository.ErrPassNotFound), errors.Is(err, repository.ErrDeviceNotFound):
			log.Error("pass not found", slog.String("id", passID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("pass not found"))
		case errors.Is(err, models.ErrAccessDenied):
			log.Error("access denied", slog.String("user", sess.UserUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to render pass card", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not render pass card"))
		}
		return
	}

	log.Info("pass card rendered", slog.String("id", passID))
}
