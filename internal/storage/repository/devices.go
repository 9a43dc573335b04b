package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

// Владелец резолвится из users один раз здесь, на границе хранилища.
const deviceColumns = `d.id, d.device_name, d.device_type, COALESCE(d.serial_number, ''),
			  d.status, d.owner_uid, u.email, d.created_at`

func scanDevice(row interface{ Scan(...any) error }) (*models.Device, error) {
	d := &models.Device{}
	if err := row.Scan(&d.ID, &d.DeviceName, &d.DeviceType, &d.SerialNumber,
		&d.Status, &d.Owner.UID, &d.Owner.Email, &d.CreatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateDevice сохраняет новое устройство и возвращает его ID.
func (s *Storage) CreateDevice(ctx context.Context, device models.Device) (string, error) {
	const op = "storage.CreateDevice"

	var newID string
	query := `INSERT INTO devices (device_name, device_type, serial_number, status, owner_uid)
			  VALUES ($1, $2, NULLIF($3, ''), $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		device.DeviceName, device.DeviceType, device.SerialNumber,
		device.Status, device.Owner.UID).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetDevice возвращает устройство по ID вместе с владельцем.
func (s *Storage) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	const op = "storage.GetDevice"

	query := `SELECT ` + deviceColumns + `
			  FROM devices d
			  JOIN users u ON u.uid = d.owner_uid
			  WHERE d.id = $1`
	device, err := scanDevice(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrDeviceNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return device, nil
}

// ListDevicesByOwner возвращает устройства владельца в порядке создания.
func (s *Storage) ListDevicesByOwner(ctx context.Context, ownerUID string) ([]*models.Device, error) {
	const op = "storage.ListDevicesByOwner"

	query := `SELECT ` + deviceColumns + `
			  FROM devices d
			  JOIN users u ON u.uid = d.owner_uid
			  WHERE d.owner_uid = $1
			  ORDER BY d.created_at`
	return s.listDevices(ctx, op, query, ownerUID)
}

// ListAllDevices возвращает все устройства с пагинацией.
func (s *Storage) ListAllDevices(ctx context.Context, limit, offset int) ([]*models.Device, error) {
	const op = "storage.ListAllDevices"

	query := `SELECT ` + deviceColumns + `
			  FROM devices d
			  JOIN users u ON u.uid = d.owner_uid
			  ORDER BY d.created_at
			  LIMIT $1 OFFSET $2`
	return s.listDevices(ctx, op, query, limit, offset)
}

// CountDevices возвращает общее количество устройств.
func (s *Storage) CountDevices(ctx context.Context) (int, error) {
	const op = "storage.CountDevices"

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func (s *Storage) listDevices(ctx context.Context, op, query string, args ...any) ([]*models.Device, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
