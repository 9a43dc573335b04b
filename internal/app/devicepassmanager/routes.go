// Package devicepassmanager предоставляет маршруты для основного приложения.
package devicepassmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/device/devicecreate"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/device/devicelist"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/device/deviceread"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/health"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/pass/passcreate"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/pass/passlist"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/pass/passprint"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/user/usercreate"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/handlers/user/userlist"
	"github.com/magabrotheeeer/device-pass-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
	authservice "github.com/magabrotheeeer/device-pass-manager/internal/services/auth"
	deviceservice "github.com/magabrotheeeer/device-pass-manager/internal/services/device"
	passservice "github.com/magabrotheeeer/device-pass-manager/internal/services/pass"
	userservice "github.com/magabrotheeeer/device-pass-manager/internal/services/user"
	"github.com/magabrotheeeer/device-pass-manager/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	userService *userservice.UserService,
	deviceService *deviceservice.DeviceService,
	passService *passservice.PassService,
	db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/users/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/users/logout", logout.New(logger, authService).ServeHTTP)

			r.Post("/devices", devicecreate.New(logger, deviceService).ServeHTTP)
			r.Get("/devices", devicelist.New(logger, deviceService).ServeHTTP)
			r.Get("/devices/{id}", deviceread.New(logger, deviceService).ServeHTTP)

			r.Get("/passes/by-device", passlist.New(logger, passService).ServeHTTP)
			r.Post("/passes", passcreate.New(logger, passService).ServeHTTP)
			r.Get("/passes/{id}/print", passprint.New(logger, passService).ServeHTTP)

			// Административные списки, закрытые по роли
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
				r.Get("/users", userlist.New(logger, userService).ServeHTTP)
				r.Post("/users", usercreate.New(logger, userService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
