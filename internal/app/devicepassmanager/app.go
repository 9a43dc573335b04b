package devicepassmanager

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/device-pass-manager/internal/cache"
	"github.com/magabrotheeeer/device-pass-manager/internal/config"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/device-pass-manager/internal/migrations"
	authservice "github.com/magabrotheeeer/device-pass-manager/internal/services/auth"
	deviceservice "github.com/magabrotheeeer/device-pass-manager/internal/services/device"
	passservice "github.com/magabrotheeeer/device-pass-manager/internal/services/pass"
	userservice "github.com/magabrotheeeer/device-pass-manager/internal/services/user"
	"github.com/magabrotheeeer/device-pass-manager/internal/storage/repository"
)

// App собирает зависимости сервиса и управляет жизненным циклом HTTP-сервера.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	events *rabbitmq.Publisher
}

// New создает приложение: подключает хранилище, прогоняет миграции,
// поднимает кеш, опционально подключает брокер событий и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, cacheRedis)
	userService := userservice.NewUserService(db, logger)
	deviceService := deviceservice.NewDeviceService(db, logger)

	// Публикация событий опциональна: без брокера сервис работает как обычно.
	var publisher *rabbitmq.Publisher
	var events passservice.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, 5, 3*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetSecurityQueues())
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
		events = publisher
	}

	passService := passservice.NewPassService(db, db, cacheRedis, events, cfg.Card.QRServiceURL, logger)

	if cfg.Bootstrap.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			return nil, err
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, userService, deviceService, passService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		events: publisher,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
