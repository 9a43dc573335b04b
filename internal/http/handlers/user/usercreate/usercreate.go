// Package usercreate реализует HTTP-обработчик создания учётной записи
// администратором. Начальный пароль генерируется сервером и возвращается
// в ответе один раз.
package usercreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/response"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/sl"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
	"github.com/magabrotheeeer/device-pass-manager/internal/storage/repository"
)

// Handler управляет HTTP-запросами на создание пользователей.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики пользователей
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания пользователя.
type Service interface {
	Create(ctx context.Context, req models.DummyUser) (*models.User, string, error)
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
// @Summary Создать пользователя
// @Description Создает учётную запись с указанной ролью. Начальный пароль генерируется сервером и возвращается один раз.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyUser true "Данные нового пользователя"
// @Success 200 {object} map[string]any "Созданный пользователь и начальный пароль"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.usercreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUser
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

	user, initialPassword, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			log.Error("email already taken", slog.String("email", req.Email))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email must be unique"))
			return
		}
		log.Error("failed to create user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create user"))
		return
	}

	log.Info("created new user", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":            user,
		"initialPassword": initialPassword,
	}))
}
