package login

import (
	"bytes"
	"context"
	"encoding/json"
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

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m *AuthServiceMock)
		wantStatus int
		wantError  string
	}{
		{
			name: "success",
			body: `{"email":"alice@corp.example","password":"secret123"}`,
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "alice@corp.example", "secret123").
					Return("jwt-token", &models.User{UID: "u1", Email: "alice@corp.example", Role: models.RoleEmployee}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid credentials",
			body: `{"email":"alice@corp.example","password":"wrongpass"}`,
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "alice@corp.example", "wrongpass").
					Return("", nil, models.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid email or password",
		},
		{
			name:       "broken json",
			body:       `{"email":`,
			setupMock:  func(m *AuthServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "not an email",
			body:       `{"email":"not-an-email","password":"secret123"}`,
			setupMock:  func(m *AuthServiceMock) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			tt.setupMock(authMock)
			h := New(newNoopLogger(), authMock)

			req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)

			var resp response.Response
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, response.StatusOK, resp.Status)
				data := resp.Data.(map[string]any)
				assert.Equal(t, "jwt-token", data["token"])
			} else if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
			}
		})
	}
}
