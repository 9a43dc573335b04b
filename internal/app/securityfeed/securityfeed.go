// Package securityfeed собирает воркер дежурной ленты службы безопасности:
// подключение к брокеру и потребление событий выпуска пропусков.
package securityfeed

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/device-pass-manager/internal/config"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/rabbitmq"
	feedservice "github.com/magabrotheeeer/device-pass-manager/internal/services/securityfeed"
)

type App struct {
	conn        *amqp.Connection
	ch          *amqp.Channel
	feedService *feedservice.Service
	logger      *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetSecurityQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &App{
		conn:        conn,
		ch:          ch,
		feedService: feedservice.NewService(logger),
		logger:      logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "pass.events.security", a.feedService.HandlePassCreated)
	if err != nil {
		a.logger.Error("failed to start pass.events.security consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("security feed shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
