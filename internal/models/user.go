// Package models содержит доменную модель пользователя системы,
// включающую учётную запись, хэш пароля и роль, определяющую
// доступ к административным операциям.
package models

import "time"

// Роли пользователей. Роль admin открывает административные списки
// устройств и пользователей, security получает доступ на чтение
// к чужим устройствам и пропускам.
const (
	RoleEmployee = "employee"
	RoleSecurity = "security"
	RoleAdmin    = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    `json:"id"`    // Уникальный идентификатор пользователя
	Email        string    `json:"email"` // Электронная почта, уникальная, используется как отображаемое имя
	PasswordHash string    `json:"-"`     // Хэш пароля пользователя
	Role         string    `json:"role"`  // Роль пользователя: employee, security или admin
	CreatedAt    time.Time `json:"createdAt"`
}

// DummyUser используется для приёма данных из JSON-запроса на создание
// пользователя администратором. Пароль не принимается: начальный пароль
// генерируется сервером.
type DummyUser struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=employee security admin"`
}
