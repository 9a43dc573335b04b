package models

import "errors"

// Доменные ошибки, общие для сервисов.
var (
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccessDenied — у сессии нет прав на операцию или объект.
	ErrAccessDenied = errors.New("access denied")
)
