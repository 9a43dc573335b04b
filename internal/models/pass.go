package models

import "time"

// Статусы пропуска. Пропуск создаётся активным; в expired и revoked
// его переводит только хранилище, обратных переходов нет.
const (
	PassStatusActive  = "active"
	PassStatusExpired = "expired"
	PassStatusRevoked = "revoked"
)

// Pass представляет пропуск — ограниченное по времени разрешение,
// привязанное к устройству. Даты календарные, диапазон включительный
// с обеих сторон. Поле IsCurrentlyValid вычисляется при выдаче
// и не хранится.
type Pass struct {
	ID               string    `json:"id"`
	DeviceID         string    `json:"device"`
	Label            string    `json:"label"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	Status           string    `json:"status"`
	IsCurrentlyValid bool      `json:"isCurrentlyValid"`
	CreatedAt        time.Time `json:"createdAt"`
}

// DummyPass используется для приёма данных из JSON-запроса на создание
// пропуска. Даты приходят строками в формате 2006-01-02. Метка
// опциональна, при отсутствии генерируется сервером. Статус принимается
// для совместимости с клиентом, но при создании всегда active.
type DummyPass struct {
	Device    string `json:"device" validate:"required,uuid"`
	Label     string `json:"label,omitempty" validate:"omitempty,max=50"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=active"`
}
