package pass

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/device-pass-manager/internal/models"
	"github.com/magabrotheeeer/device-pass-manager/internal/storage/repository"
)

type MockPassRepository struct {
	mock.Mock
}

func (m *MockPassRepository) CreatePass(ctx context.Context, pass models.Pass) (*models.Pass, error) {
	args := m.Called(ctx, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pass), args.Error(1)
}

func (m *MockPassRepository) GetPass(ctx context.Context, id string) (*models.Pass, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pass), args.Error(1)
}

func (m *MockPassRepository) ListPassesByDevice(ctx context.Context, deviceID string) ([]*models.Pass, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Pass), args.Error(1)
}

type MockDeviceGetter struct {
	mock.Mock
}

func (m *MockDeviceGetter) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(repo *MockPassRepository, devices *MockDeviceGetter, cache *MockCache,
	events EventPublisher, today string) *PassService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewPassService(repo, devices, cache, events, "", log)
	svc.now = func() time.Time { return date(today) }
	return svc
}

func TestDeriveValidity(t *testing.T) {
	tests := []struct {
		name string
		pass models.Pass
		asOf string
		want bool
	}{
		{
			name: "active and inside range",
			pass: models.Pass{Status: models.PassStatusActive, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
			asOf: "2025-02-15",
			want: true,
		},
		{
			name: "active but after end date",
			pass: models.Pass{Status: models.PassStatusActive, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
			asOf: "2025-04-01",
			want: false,
		},
		{
			name: "active but before start date",
			pass: models.Pass{Status: models.PassStatusActive, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
			asOf: "2025-01-31",
			want: false,
		},
		{
			name: "start date is inclusive",
			pass: models.Pass{Status: models.PassStatusActive, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
			asOf: "2025-02-01",
			want: true,
		},
		{
			name: "end date is inclusive",
			pass: models.Pass{Status: models.PassStatusActive, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
			asOf: "2025-03-01",
			want: true,
		},
		{
			name: "single day pass on its day",
			pass: models.Pass{Status: models.PassStatusActive, StartDate: date("2025-02-01"), EndDate: date("2025-02-01")},
			asOf: "2025-02-01",
			want: true,
		},
		{
			name: "revoked pass inside range",
			pass: models.Pass{Status: models.PassStatusRevoked, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
			asOf: "2025-02-15",
			want: false,
		},
		{
			name: "expired pass inside range",
			pass: models.Pass{Status: models.PassStatusExpired, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
			asOf: "2025-02-15",
			want: false,
		},
		{
			name: "time of day is ignored",
			pass: models.Pass{Status: models.PassStatusActive, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
			asOf: "2025-03-01",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveValidity(tt.pass, date(tt.asOf).Add(23*time.Hour+59*time.Minute))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreate_RejectsInvalidDatesBeforeRepo(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		endDate   string
		wantErr   error
	}{
		{
			name:      "end before start",
			startDate: "2025-03-01",
			endDate:   "2025-02-01",
			wantErr:   ErrInvalidDateRange,
		},
		{
			name:      "start before today",
			startDate: "2025-01-01",
			endDate:   "2025-03-01",
			wantErr:   ErrStartDateInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockPassRepository)
			mockDevices := new(MockDeviceGetter)
			mockCache := new(MockCache)
			svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-01")

			sess := models.Session{UserUID: "owner-uid", Role: models.RoleEmployee}
			_, err := svc.Create(context.Background(), sess, models.DummyPass{
				Device:    "device-id",
				StartDate: tt.startDate,
				EndDate:   tt.endDate,
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			mockRepo.AssertNotCalled(t, "CreatePass")
			mockDevices.AssertNotCalled(t, "GetDevice")
		})
	}
}

func TestCreate_Success(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	mockEvents := new(MockPublisher)
	svc := newTestService(mockRepo, mockDevices, mockCache, mockEvents, "2025-02-01")

	device := &models.Device{
		ID:    "device-id",
		Owner: models.Owner{UID: "owner-uid", Email: "alice@corp.example"},
	}
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)
	mockRepo.On("CreatePass", mock.Anything, mock.MatchedBy(func(p models.Pass) bool {
		return p.DeviceID == "device-id" &&
			p.Status == models.PassStatusActive &&
			strings.HasPrefix(p.Label, "PASS-") &&
			len(p.Label) == len("PASS-")+8
	})).Return(&models.Pass{
		ID:        "pass-id",
		DeviceID:  "device-id",
		Label:     "PASS-AB12CD34",
		StartDate: date("2025-02-01"),
		EndDate:   date("2025-03-01"),
		Status:    models.PassStatusActive,
	}, nil)
	mockCache.On("Invalidate", "passes:device:device-id").Return(nil)
	mockEvents.On("Publish", "pass.created", mock.Anything).Return(nil)

	sess := models.Session{UserUID: "owner-uid", Role: models.RoleEmployee}
	created, err := svc.Create(context.Background(), sess, models.DummyPass{
		Device:    "device-id",
		StartDate: "2025-02-01",
		EndDate:   "2025-03-01",
	})

	require.NoError(t, err)
	assert.True(t, created.IsCurrentlyValid)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestCreate_KeepsClientLabel(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-01")

	device := &models.Device{ID: "device-id", Owner: models.Owner{UID: "owner-uid"}}
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)
	mockRepo.On("CreatePass", mock.Anything, mock.MatchedBy(func(p models.Pass) bool {
		return p.Label == "Visiting contractor"
	})).Return(&models.Pass{ID: "pass-id", Label: "Visiting contractor", Status: models.PassStatusActive}, nil)
	mockCache.On("Invalidate", mock.Anything).Return(nil)

	sess := models.Session{UserUID: "owner-uid", Role: models.RoleEmployee}
	_, err := svc.Create(context.Background(), sess, models.DummyPass{
		Device:    "device-id",
		Label:     "Visiting contractor",
		StartDate: "2025-02-01",
		EndDate:   "2025-03-01",
	})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreate_PassesThroughOverlapError(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-01")

	device := &models.Device{ID: "device-id", Owner: models.Owner{UID: "owner-uid"}}
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)
	mockRepo.On("CreatePass", mock.Anything, mock.Anything).Return(nil, repository.ErrPassOverlap)

	sess := models.Session{UserUID: "owner-uid", Role: models.RoleEmployee}
	_, err := svc.Create(context.Background(), sess, models.DummyPass{
		Device:    "device-id",
		StartDate: "2025-02-01",
		EndDate:   "2025-03-01",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrPassOverlap)
	mockCache.AssertNotCalled(t, "Invalidate")
}

func TestCreate_DeniesForeignDevice(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-01")

	device := &models.Device{ID: "device-id", Owner: models.Owner{UID: "owner-uid"}}
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)

	tests := []struct {
		name    string
		sess    models.Session
		wantErr error
	}{
		{
			name:    "other employee",
			sess:    models.Session{UserUID: "stranger-uid", Role: models.RoleEmployee},
			wantErr: models.ErrAccessDenied,
		},
		{
			name:    "security cannot create",
			sess:    models.Session{UserUID: "guard-uid", Role: models.RoleSecurity},
			wantErr: models.ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.sess, models.DummyPass{
				Device:    "device-id",
				StartDate: "2025-02-01",
				EndDate:   "2025-03-01",
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			mockRepo.AssertNotCalled(t, "CreatePass")
		})
	}
}

func TestList_DerivesValidityAfterCache(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-15")

	device := &models.Device{ID: "device-id", Owner: models.Owner{UID: "owner-uid"}}
	stored := []*models.Pass{
		{ID: "p1", Status: models.PassStatusActive, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
		{ID: "p2", Status: models.PassStatusActive, StartDate: date("2025-01-01"), EndDate: date("2025-01-31")},
		{ID: "p3", Status: models.PassStatusRevoked, StartDate: date("2025-02-01"), EndDate: date("2025-03-01")},
	}
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)
	mockCache.On("Get", "passes:device:device-id", mock.Anything).Return(false, nil)
	mockRepo.On("ListPassesByDevice", mock.Anything, "device-id").Return(stored, nil)
	mockCache.On("Set", "passes:device:device-id", mock.Anything, time.Minute).Return(nil)

	sess := models.Session{UserUID: "owner-uid", Role: models.RoleEmployee}
	passes, err := svc.List(context.Background(), sess, "device-id")

	require.NoError(t, err)
	require.Len(t, passes, 3)
	assert.True(t, passes[0].IsCurrentlyValid)
	assert.False(t, passes[1].IsCurrentlyValid)
	assert.False(t, passes[2].IsCurrentlyValid)
}

func TestList_EmptyIsNotAnError(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-15")

	device := &models.Device{ID: "device-id", Owner: models.Owner{UID: "owner-uid"}}
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)
	mockCache.On("Get", mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("ListPassesByDevice", mock.Anything, "device-id").Return([]*models.Pass{}, nil)
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sess := models.Session{UserUID: "owner-uid", Role: models.RoleEmployee}
	passes, err := svc.List(context.Background(), sess, "device-id")

	require.NoError(t, err)
	assert.Empty(t, passes)
	assert.NotNil(t, passes)
}

func TestList_SecurityCanReadForeignDevice(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-15")

	device := &models.Device{ID: "device-id", Owner: models.Owner{UID: "owner-uid"}}
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)
	mockCache.On("Get", mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("ListPassesByDevice", mock.Anything, "device-id").Return([]*models.Pass{}, nil)
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sess := models.Session{UserUID: "guard-uid", Role: models.RoleSecurity}
	_, err := svc.List(context.Background(), sess, "device-id")

	require.NoError(t, err)
}

func TestList_UnknownDevice(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-15")

	mockDevices.On("GetDevice", mock.Anything, "missing").Return(nil, repository.ErrDeviceNotFound)

	sess := models.Session{UserUID: "owner-uid", Role: models.RoleEmployee}
	_, err := svc.List(context.Background(), sess, "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDeviceNotFound)
	mockCache.AssertNotCalled(t, "Get")
}

func TestRenderCard(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-15")

	p := &models.Pass{
		ID:        "pass-id",
		DeviceID:  "device-id",
		Label:     "PASS-AB12CD34",
		StartDate: date("2025-02-01"),
		EndDate:   date("2025-03-01"),
		Status:    models.PassStatusActive,
	}
	device := &models.Device{
		ID:         "device-id",
		DeviceName: "Work Laptop",
		Owner:      models.Owner{UID: "owner-uid", Email: "alice@corp.example"},
	}
	mockRepo.On("GetPass", mock.Anything, "pass-id").Return(p, nil)
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)

	sess := models.Session{UserUID: "owner-uid", Role: models.RoleEmployee}
	var out strings.Builder
	err := svc.RenderCard(context.Background(), sess, "pass-id", &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "PASS-AB12CD34")
	assert.Contains(t, out.String(), "Work Laptop")
	assert.Contains(t, out.String(), "window.print()")
}

func TestRenderCard_WritesNothingOnError(t *testing.T) {
	mockRepo := new(MockPassRepository)
	mockDevices := new(MockDeviceGetter)
	mockCache := new(MockCache)
	svc := newTestService(mockRepo, mockDevices, mockCache, nil, "2025-02-15")

	p := &models.Pass{ID: "pass-id", DeviceID: "device-id"}
	device := &models.Device{ID: "device-id", Owner: models.Owner{UID: "owner-uid"}}
	mockRepo.On("GetPass", mock.Anything, "pass-id").Return(p, nil)
	mockDevices.On("GetDevice", mock.Anything, "device-id").Return(device, nil)

	tests := []struct {
		name    string
		sess    models.Session
		passID  string
		wantErr error
	}{
		{
			name:    "access denied",
			sess:    models.Session{UserUID: "stranger-uid", Role: models.RoleEmployee},
			passID:  "pass-id",
			wantErr: models.ErrAccessDenied,
		},
		{
			name:    "unknown pass",
			sess:    models.Session{UserUID: "owner-uid", Role: models.RoleEmployee},
			passID:  "missing",
			wantErr: repository.ErrPassNotFound,
		},
	}
	mockRepo.On("GetPass", mock.Anything, "missing").Return(nil, repository.ErrPassNotFound)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			err := svc.RenderCard(context.Background(), tt.sess, tt.passID, &out)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			// Тело формируется целиком или не формируется вовсе.
			assert.Empty(t, out.String())
		})
	}
}
