// Package middlewarectx содержит HTTP middleware для проверки JWT токенов
// и ограничения доступа по ролям.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization, включая денилист отозванных токенов, и в случае успеха
// кладёт в контекст сессию пользователя для дальнейшего использования
// в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/response"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/sl"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// SessionKey — ключ для сессии пользователя в контексте.
const SessionKey Key = "session"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Session, error)
}

// SessionFromContext возвращает сессию пользователя из контекста запроса.
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(models.Session)
	return sess, ok
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден и не отозван, добавляет сессию пользователя в контекст
// запроса, иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			sess, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, *sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
