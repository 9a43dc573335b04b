// Package models содержит доменные структуры устройства и владельца,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"encoding/json"
	"time"
)

// Типы устройств.
const (
	DeviceTypePhone   = "Phone"
	DeviceTypeTablet  = "Tablet"
	DeviceTypeLaptop  = "Laptop"
	DeviceTypeDesktop = "Desktop"
	DeviceTypeOther   = "Other"
)

// Owner представляет владельца устройства. Внешние источники отдают
// владельца в двух формах: как объект {"email": ...} (возможно с uid)
// или как голую строку с email. Обе формы нормализуются здесь один раз,
// ниже по коду владелец никогда не перепроверяется.
type Owner struct {
	UID   string `json:"uid,omitempty"`
	Email string `json:"email"`
}

// Display возвращает отображаемое имя владельца.
func (o Owner) Display() string {
	return o.Email
}

// UnmarshalJSON принимает обе формы владельца: строку и объект.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		o.UID = ""
		o.Email = plain
		return nil
	}

	type alias Owner
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*o = Owner(obj)
	return nil
}

// Device представляет зарегистрированное устройство, привязанное
// ровно к одному владельцу.
type Device struct {
	ID           string    `json:"id"`
	DeviceName   string    `json:"deviceName"`
	DeviceType   string    `json:"deviceType"`
	SerialNumber string    `json:"serialNumber,omitempty"`
	Status       string    `json:"status"`
	Owner        Owner     `json:"owner"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DummyDevice используется для приёма данных из JSON-запроса на регистрацию
// устройства. Владелец опционален: по умолчанию устройство регистрируется
// на вызывающего пользователя, указать другого владельца может только админ.
type DummyDevice struct {
	DeviceName   string `json:"deviceName" validate:"required,min=1,max=100"`
	DeviceType   string `json:"deviceType" validate:"required,oneof=Phone Tablet Laptop Desktop Other"`
	SerialNumber string `json:"serialNumber,omitempty" validate:"omitempty,max=100"`
	Owner        string `json:"owner,omitempty" validate:"omitempty,uuid"`
}
