// Package securityfeed содержит обработку событий выпуска пропусков
// для дежурной ленты службы безопасности.
package securityfeed

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// PassCreatedEvent — событие выпуска пропуска из брокера.
type PassCreatedEvent struct {
	PassID    string `json:"pass_id"`
	DeviceID  string `json:"device_id"`
	Owner     string `json:"owner"`
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Service пишет события выпуска пропусков в дежурную ленту.
type Service struct {
	log *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(log *slog.Logger) *Service {
	return &Service{log: log}
}

// HandlePassCreated разбирает событие и записывает его в ленту.
// Нечитаемое сообщение возвращается в очередь.
func (s *Service) HandlePassCreated(body []byte) error {
	const op = "securityfeed.HandlePassCreated"

	var event PassCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("pass issued",
		slog.String("pass_id", event.PassID),
		slog.String("device_id", event.DeviceID),
		slog.String("owner", event.Owner),
		slog.String("label", event.Label),
		slog.String("start_date", event.StartDate),
		slog.String("end_date", event.EndDate),
	)
	return nil
}
