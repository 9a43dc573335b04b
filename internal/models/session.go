package models

// Session представляет контекст аутентифицированного пользователя.
// Заполняется middleware из проверенного токена и передаётся явно
// во все защищённые вызовы сервисов вместо глобального состояния.
// После logout токен попадает в денилист и новая Session по нему
// больше не создаётся.
type Session struct {
	UserUID string
	Email   string
	Role    string
}

// IsAdmin сообщает, имеет ли сессия административные права.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanReadDevice сообщает, может ли сессия читать устройство
// с указанным владельцем: владелец, security или admin.
func (s Session) CanReadDevice(ownerUID string) bool {
	return s.UserUID == ownerUID || s.Role == RoleSecurity || s.Role == RoleAdmin
}
