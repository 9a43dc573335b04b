package repository

import "errors"

// Ошибки хранилища. Обработчики сопоставляют их с HTTP-статусами,
// сервисы — с сообщениями для пользователя.
var (
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken — email уже занят другим пользователем.
	ErrEmailTaken = errors.New("email already taken")
	// ErrDeviceNotFound — устройство не найдено.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrPassNotFound — пропуск не найден.
	ErrPassNotFound = errors.New("pass not found")
	// ErrPassOverlap — у устройства уже есть активный пропуск,
	// пересекающийся с запрошенным диапазоном дат.
	ErrPassOverlap = errors.New("overlapping active pass")
)
