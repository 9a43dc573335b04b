// Package logout реализует HTTP-обработчик выхода пользователя:
// предъявленный токен попадает в денилист и дальнейшие запросы
// с ним отклоняются.
package logout

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/response"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы на выход.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выхода.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Инвалидирует предъявленный JWT до конца его срока жизни.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Успешный выход"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.service.Logout(r.Context(), token); err != nil {
		log.Error("failed to logout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("logout success")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "logged out",
	}))
}
