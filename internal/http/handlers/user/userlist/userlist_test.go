package userlist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/device-pass-manager/internal/http/response"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUserList(t *testing.T) {
	mockSvc := new(UserServiceMock)
	mockSvc.On("List", mock.Anything).Return([]*models.User{
		{UID: "u1", Email: "a@corp.example", Role: models.RoleAdmin},
		{UID: "u2", Email: "b@corp.example", Role: models.RoleEmployee},
	}, nil)
	h := New(newNoopLogger(), mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp response.Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, response.StatusOK, resp.Status)
	// Последовательности во всех списках приходят под ключом docs.
	data := resp.Data.(map[string]any)
	assert.Len(t, data["docs"], 2)
}

func TestUserList_ServiceError(t *testing.T) {
	mockSvc := new(UserServiceMock)
	mockSvc.On("List", mock.Anything).Return(nil, errors.New("db down"))
	h := New(newNoopLogger(), mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
