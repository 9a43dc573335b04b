// Package auth содержит логику бизнес-уровня для аутентификации:
// вход по email и паролю, проверку токена с учётом денилиста
// и выход с атомарной инвалидацией токена.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/device-pass-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/device-pass-manager/internal/lib/password"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
	"github.com/magabrotheeeer/device-pass-manager/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenDenylist хранит инвалидированные токены до истечения их срока.
type TokenDenylist interface {
	RevokeToken(token string, ttl time.Duration) error
	IsTokenRevoked(token string) (bool, error)
}

// AuthService отвечает за вход, выход и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	tokens   TokenDenylist
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, tokens TokenDenylist) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		tokens:   tokens,
	}
}

// Login проверяет пароль пользователя и генерирует JWT.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, models.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, models.ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.Email, user.Role, user.UID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и денилист, возвращает сессию пользователя.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Session, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.tokens.IsTokenRevoked(token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errors.New("token revoked")
	}
	return &models.Session{
		UserUID: claims.UserUID,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}

// Logout инвалидирует токен до конца его срока жизни. Невалидный
// токен инвалидировать нечем, это не ошибка.
func (s *AuthService) Logout(_ context.Context, token string) error {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.tokens.RevokeToken(token, ttl)
}

// EnsureAdmin создает начальную учётную запись администратора,
// если пользователя с таким email ещё нет.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, rawPassword string) error {
	const op = "auth.EnsureAdmin"
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.users.RegisterUser(ctx, models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
