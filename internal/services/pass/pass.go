// Package pass содержит бизнес-логику жизненного цикла пропусков:
// списки по устройству, создание с локальной валидацией дат,
// вычисление актуальной валидности и печать карточки пропуска.
//
// Статусы пропусков сервис никогда не меняет: переходы active ->
// expired/revoked выполняет хранилище, сервис лишь вычисляет
// производный признак IsCurrentlyValid на момент выдачи.
package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/device-pass-manager/internal/lib/card"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/sl"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

// Ошибки локальной валидации дат. Возвращаются до обращения к хранилищу.
var (
	// ErrInvalidDateRange — дата начала позже даты окончания.
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	// ErrStartDateInPast — дата начала раньше сегодняшнего дня.
	ErrStartDateInPast = errors.New("start date must not be before today")
)

const dateLayout = "2006-01-02"

// PassRepository определяет методы для работы с пропусками в хранилище.
type PassRepository interface {
	// CreatePass сохраняет новый пропуск, проверяя пересечение активных.
	CreatePass(ctx context.Context, pass models.Pass) (*models.Pass, error)
	// GetPass возвращает пропуск по ID.
	GetPass(ctx context.Context, id string) (*models.Pass, error)
	// ListPassesByDevice возвращает пропуска устройства в порядке создания.
	ListPassesByDevice(ctx context.Context, deviceID string) ([]*models.Pass, error)
}

// DeviceGetter возвращает устройство для проверки прав и печати.
type DeviceGetter interface {
	GetDevice(ctx context.Context, id string) (*models.Device, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// EventPublisher публикует события жизненного цикла пропусков.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// PassService реализует бизнес-логику работы с пропусками.
type PassService struct {
	repo         PassRepository
	devices      DeviceGetter
	cache        Cache
	events       EventPublisher // nil, если публикация отключена
	qrServiceURL string
	log          *slog.Logger
	now          func() time.Time
}

// NewPassService создает новый экземпляр PassService.
func NewPassService(repo PassRepository, devices DeviceGetter, cache Cache,
	events EventPublisher, qrServiceURL string, log *slog.Logger) *PassService {
	return &PassService{
		repo:         repo,
		devices:      devices,
		cache:        cache,
		events:       events,
		qrServiceURL: qrServiceURL,
		log:          log,
		now:          time.Now,
	}
}

// DeriveValidity сообщает, действует ли пропуск на дату asOf:
// статус active и asOf внутри включительного диапазона дат.
// Сравнение только по календарной дате в UTC. Хранимый статус может
// отставать: активный пропуск с прошедшей датой окончания недействителен.
func DeriveValidity(p models.Pass, asOf time.Time) bool {
	if p.Status != models.PassStatusActive {
		return false
	}
	day := toDate(asOf)
	return !day.Before(toDate(p.StartDate)) && !day.After(toDate(p.EndDate))
}

func toDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// List возвращает пропуска устройства в порядке создания с вычисленной
// валидностью. Пустой список не является ошибкой. Читать пропуска могут
// владелец устройства, security и admin.
func (s *PassService) List(ctx context.Context, sess models.Session, deviceID string) ([]*models.Pass, error) {
	device, err := s.devices.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !sess.CanReadDevice(device.Owner.UID) {
		return nil, models.ErrAccessDenied
	}

	cacheKey := fmt.Sprintf("passes:device:%s", deviceID)
	var passes []*models.Pass
	found, err := s.cache.Get(cacheKey, &passes)
	if err != nil {
		s.log.Warn("failed to read passes from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if !found {
		passes, err = s.repo.ListPassesByDevice(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(cacheKey, passes, time.Minute); err != nil {
			s.log.Warn("failed to cache passes", slog.String("key", cacheKey), sl.Err(err))
		}
	}

	// Валидность вычисляется на момент выдачи, в кеш не попадает.
	asOf := s.now()
	for _, p := range passes {
		p.IsCurrentlyValid = DeriveValidity(*p, asOf)
	}
	if passes == nil {
		passes = []*models.Pass{}
	}
	return passes, nil
}

// Create создает пропуск для устройства. Даты валидируются локально
// до обращения к хранилищу: начало не позже конца и не раньше сегодня.
// Пересечение с существующим активным пропуском отклоняет хранилище.
// Создавать пропуска могут владелец устройства и admin.
func (s *PassService) Create(ctx context.Context, sess models.Session, req models.DummyPass) (*models.Pass, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	if startDate.After(endDate) {
		return nil, ErrInvalidDateRange
	}
	if startDate.Before(toDate(s.now())) {
		return nil, ErrStartDateInPast
	}

	device, err := s.devices.GetDevice(ctx, req.Device)
	if err != nil {
		return nil, err
	}
	if sess.UserUID != device.Owner.UID && !sess.IsAdmin() {
		return nil, models.ErrAccessDenied
	}

	label := req.Label
	if label == "" {
		label = "PASS-" + strings.ToUpper(uuid.New().String()[:8])
	}

	created, err := s.repo.CreatePass(ctx, models.Pass{
		DeviceID:  req.Device,
		Label:     label,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    models.PassStatusActive,
	})
	if err != nil {
		return nil, err
	}
	created.IsCurrentlyValid = DeriveValidity(*created, s.now())

	s.log.Info("created new pass",
		slog.String("id", created.ID),
		slog.String("device", created.DeviceID),
		slog.String("label", created.Label))

	cacheKey := fmt.Sprintf("passes:device:%s", req.Device)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate passes cache", slog.String("key", cacheKey), sl.Err(err))
	}

	if s.events != nil {
		event := map[string]any{
			"pass_id":    created.ID,
			"device_id":  created.DeviceID,
			"owner":      device.Owner.Display(),
			"label":      created.Label,
			"start_date": created.StartDate.Format(dateLayout),
			"end_date":   created.EndDate.Format(dateLayout),
		}
		if err := s.events.Publish("pass.created", event); err != nil {
			s.log.Warn("failed to publish pass.created event", sl.Err(err))
		}
	}

	return created, nil
}

// RenderCard записывает печатную карточку пропуска в w. Права те же,
// что и на чтение списка пропусков устройства. Карточка собирается
// в буфер и попадает в w только целиком: при ошибке w остаётся пустым
// и вызывающий может отдать обычный ответ с ошибкой.
func (s *PassService) RenderCard(ctx context.Context, sess models.Session, passID string, w io.Writer) error {
	p, err := s.repo.GetPass(ctx, passID)
	if err != nil {
		return err
	}
	device, err := s.devices.GetDevice(ctx, p.DeviceID)
	if err != nil {
		return err
	}
	if !sess.CanReadDevice(device.Owner.UID) {
		return models.ErrAccessDenied
	}

	p.IsCurrentlyValid = DeriveValidity(*p, s.now())

	var buf bytes.Buffer
	if err := card.Render(&buf, *device, *p, s.qrServiceURL); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}
