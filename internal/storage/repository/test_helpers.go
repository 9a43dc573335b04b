package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/device-pass-manager/internal/migrations"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

// setupTestStorage поднимает контейнер PostgreSQL, применяет миграции
// и возвращает готовое хранилище. Тесты пропускаются, если контейнерные
// прогоны не включены явно.
func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("TEST_WITH_CONTAINERS") == "" {
		t.Skip("set TEST_WITH_CONTAINERS=1 to run storage integration tests")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nat.Port("5432/tcp")).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)

	path, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, path))

	cleanup := func() {
		_ = storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID.
func (f *TestDataFactory) CreateUser(t *testing.T, email, role string) string {
	t.Helper()
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, password_hash, role)
		VALUES ($1, $2, $3, $4)`,
		uid, email, "hashedpassword", role)
	require.NoError(t, err)
	return uid
}

// CreateDevice создает тестовое устройство и возвращает его ID.
func (f *TestDataFactory) CreateDevice(t *testing.T, name, deviceType, ownerUID string) string {
	t.Helper()
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO devices (device_name, device_type, status, owner_uid)
		VALUES ($1, $2, 'registered', $3) RETURNING id`,
		name, deviceType, ownerUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreatePass создает тестовый пропуск и возвращает его ID.
func (f *TestDataFactory) CreatePass(t *testing.T, deviceID, label string,
	start, end time.Time, status string) string {
	t.Helper()
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO passes (device_id, label, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		deviceID, label, start, end, status).Scan(&id)
	require.NoError(t, err)
	return id
}

func datePass(deviceID, label string, start, end time.Time) models.Pass {
	return models.Pass{
		DeviceID:  deviceID,
		Label:     label,
		StartDate: start,
		EndDate:   end,
		Status:    models.PassStatusActive,
	}
}
