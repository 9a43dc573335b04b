// Package user содержит логику бизнес-уровня для административных
// операций над пользователями: списки и создание учётных записей.
package user

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/device-pass-manager/internal/lib/password"
	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

const initialPasswordLength = 12

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// ListUsers возвращает всех пользователей в порядке создания.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// UserService реализует административные операции над пользователями.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
	}
}

// List возвращает всех пользователей.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// Create создает пользователя со случайным начальным паролем.
// Пароль возвращается один раз, чтобы администратор мог его передать;
// в хранилище попадает только хэш.
func (s *UserService) Create(ctx context.Context, req models.DummyUser) (*models.User, string, error) {
	initial, err := password.Generate(initialPasswordLength)
	if err != nil {
		return nil, "", err
	}
	hashed, err := password.GetHash(initial)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	uid, err := s.repo.RegisterUser(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.UID = uid

	s.log.Info("created new user", slog.String("uid", uid), slog.String("role", req.Role))
	return &user, initial, nil
}
