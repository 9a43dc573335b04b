package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

// CreatePass сохраняет новый пропуск. Проверка пересечения и вставка
// выполняются в одной транзакции под блокировкой строки устройства,
// поэтому конкурентные создания для одного устройства выполняются
// по очереди: два активных пропуска одного устройства не могут
// пересекаться по включительному диапазону дат, смежность день-в-день
// тоже считается пересечением. Возвращает ErrPassOverlap при конфликте.
func (s *Storage) CreatePass(ctx context.Context, pass models.Pass) (*models.Pass, error) {
	const op = "storage.CreatePass"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	// Блокировка строки устройства сериализует конкурентные создания:
	// вторая транзакция ждёт первую и её проверка видит уже
	// зафиксированный пропуск.
	var deviceID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM devices WHERE id = $1 FOR UPDATE`,
		pass.DeviceID).Scan(&deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrDeviceNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var overlaps bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM passes
			WHERE device_id = $1
			  AND status = 'active'
			  AND start_date <= $3
			  AND end_date >= $2
		)`, pass.DeviceID, pass.StartDate, pass.EndDate).Scan(&overlaps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if overlaps {
		return nil, fmt.Errorf("%s: %w", op, ErrPassOverlap)
	}

	created := pass
	err = tx.QueryRowContext(ctx, `
		INSERT INTO passes (device_id, label, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		pass.DeviceID, pass.Label, pass.StartDate, pass.EndDate, pass.Status).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// GetPass возвращает пропуск по ID.
func (s *Storage) GetPass(ctx context.Context, id string) (*models.Pass, error) {
	const op = "storage.GetPass"

	query := `SELECT id, device_id, label, start_date, end_date, status, created_at
			  FROM passes
			  WHERE id = $1`
	p := &models.Pass{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.DeviceID, &p.Label, &p.StartDate, &p.EndDate,
		&p.Status, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrPassNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPassesByDevice возвращает пропуска устройства в порядке создания.
// Пустой список не является ошибкой.
func (s *Storage) ListPassesByDevice(ctx context.Context, deviceID string) ([]*models.Pass, error) {
	const op = "storage.ListPassesByDevice"

	query := `SELECT id, device_id, label, start_date, end_date, status, created_at
			  FROM passes
			  WHERE device_id = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Pass
	for rows.Next() {
		p := &models.Pass{}
		if err := rows.Scan(&p.ID, &p.DeviceID, &p.Label, &p.StartDate, &p.EndDate,
			&p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
