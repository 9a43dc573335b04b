// Package device содержит логику бизнес-уровня для реестра устройств:
// регистрацию, чтение с проверкой прав и списки с пагинацией.
package device

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

// PageSize — фиксированный размер страницы административного списка.
const PageSize = 10

// DeviceRepository определяет методы для работы с устройствами в хранилище.
type DeviceRepository interface {
	// CreateDevice сохраняет новое устройство и возвращает его ID.
	CreateDevice(ctx context.Context, device models.Device) (string, error)
	// GetDevice возвращает устройство по ID вместе с владельцем.
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	// ListDevicesByOwner возвращает устройства владельца в порядке создания.
	ListDevicesByOwner(ctx context.Context, ownerUID string) ([]*models.Device, error)
	// ListAllDevices возвращает все устройства с пагинацией.
	ListAllDevices(ctx context.Context, limit, offset int) ([]*models.Device, error)
	// CountDevices возвращает общее количество устройств.
	CountDevices(ctx context.Context) (int, error)
}

// DeviceService реализует бизнес-логику реестра устройств.
type DeviceService struct {
	repo DeviceRepository
	log  *slog.Logger
}

// NewDeviceService создает новый экземпляр DeviceService.
func NewDeviceService(repo DeviceRepository, log *slog.Logger) *DeviceService {
	return &DeviceService{
		repo: repo,
		log:  log,
	}
}

// Register регистрирует устройство. Владелец по умолчанию — вызывающий;
// указать другого владельца может только администратор.
func (s *DeviceService) Register(ctx context.Context, sess models.Session, req models.DummyDevice) (string, error) {
	ownerUID := sess.UserUID
	if req.Owner != "" && req.Owner != sess.UserUID {
		if !sess.IsAdmin() {
			return "", models.ErrAccessDenied
		}
		ownerUID = req.Owner
	}

	device := models.Device{
		DeviceName:   req.DeviceName,
		DeviceType:   req.DeviceType,
		SerialNumber: req.SerialNumber,
		Status:       "registered",
		Owner:        models.Owner{UID: ownerUID},
	}
	id, err := s.repo.CreateDevice(ctx, device)
	if err != nil {
		return "", err
	}

	s.log.Info("registered new device", slog.String("id", id), slog.String("owner", ownerUID))
	return id, nil
}

// Get возвращает устройство по ID, если сессия имеет право его читать:
// владелец, security или admin.
func (s *DeviceService) Get(ctx context.Context, sess models.Session, id string) (*models.Device, error) {
	device, err := s.repo.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.CanReadDevice(device.Owner.UID) {
		return nil, models.ErrAccessDenied
	}
	return device, nil
}

// ListForOwner возвращает устройства вызывающего пользователя.
func (s *DeviceService) ListForOwner(ctx context.Context, sess models.Session) ([]*models.Device, error) {
	return s.repo.ListDevicesByOwner(ctx, sess.UserUID)
}

// ListAll возвращает страницу общего списка устройств и количество страниц.
// Страницы нумеруются с единицы, номер за пределами диапазона прижимается
// к границе. Для пустого реестра (0, пустой список).
func (s *DeviceService) ListAll(ctx context.Context, page int) ([]*models.Device, int, error) {
	count, err := s.repo.CountDevices(ctx)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return []*models.Device{}, 0, nil
	}

	totalPages := (count + PageSize - 1) / PageSize
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	items, err := s.repo.ListAllDevices(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, totalPages, nil
}
