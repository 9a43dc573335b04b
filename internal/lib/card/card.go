// Package card формирует печатный артефакт пропуска: автономный
// HTML-документ с данными устройства, владельца и пропуска, а также
// сканируемым проверочным кодом. Документ сам открывает диалог печати,
// единственный внешний запрос — картинка QR-кода по проверочной строке.
package card

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/device-pass-manager/internal/models"
)

// DefaultQRServiceURL — сервис генерации картинки QR-кода по умолчанию.
const DefaultQRServiceURL = "https://api.qrserver.com/v1/create-qr-code/"

// FormatDate возвращает дату в виде "Jan 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// CapitalizeStatus возвращает статус с заглавной первой буквой.
func CapitalizeStatus(status string) string {
	if status == "" {
		return ""
	}
	return strings.ToUpper(status[:1]) + status[1:]
}

// VerificationPayload собирает компактную проверочную строку пропуска:
// имя устройства, владелец, метка, даты и статус, разделённые "|".
// Эта строка кодируется в QR и сверяется охраной со строками на карточке.
func VerificationPayload(device models.Device, pass models.Pass) string {
	return strings.Join([]string{
		"PASS",
		device.DeviceName,
		device.Owner.Display(),
		pass.Label,
		pass.StartDate.Format("2006-01-02"),
		pass.EndDate.Format("2006-01-02"),
		pass.Status,
	}, "|")
}

type cardData struct {
	DeviceName string
	OwnerName  string
	Label      string
	StartDate  string
	EndDate    string
	Status     string
	Valid      bool
	QRImageURL string
}

// Render записывает печатный HTML-документ пропуска в w.
// qrServiceURL — базовый адрес сервиса генерации QR-картинок;
// пустая строка означает DefaultQRServiceURL.
func Render(w io.Writer, device models.Device, pass models.Pass, qrServiceURL string) error {
	const op = "card.Render"
	if qrServiceURL == "" {
		qrServiceURL = DefaultQRServiceURL
	}

	qrImage := fmt.Sprintf("%s?size=160x160&data=%s",
		qrServiceURL, url.QueryEscape(VerificationPayload(device, pass)))

	data := cardData{
		DeviceName: device.DeviceName,
		OwnerName:  device.Owner.Display(),
		Label:      pass.Label,
		StartDate:  FormatDate(pass.StartDate),
		EndDate:    FormatDate(pass.EndDate),
		Status:     CapitalizeStatus(pass.Status),
		Valid:      pass.IsCurrentlyValid,
		QRImageURL: qrImage,
	}
	if err := cardTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var cardTemplate = template.Must(template.New("pass-card").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Device Pass — {{.Label}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Arial, sans-serif; margin: 0; padding: 24px; }
  .card { width: 360px; border: 2px solid #1f2937; border-radius: 12px; padding: 20px; }
  .card h1 { font-size: 18px; margin: 0 0 4px; }
  .card .owner { color: #374151; margin-bottom: 12px; }
  .card .label { font-family: monospace; font-weight: bold; font-size: 16px; }
  .card .dates { color: #4b5563; margin: 8px 0; }
  .card .status { display: inline-block; padding: 2px 8px; border-radius: 9999px; font-size: 12px; font-weight: 600; }
  .card .status.valid { background: #d1fae5; color: #065f46; }
  .card .status.invalid { background: #e5e7eb; color: #374151; }
  .card img { display: block; margin-top: 12px; }
  @media print { body { padding: 0; } }
</style>
</head>
<body onload="window.print()">
<div class="card">
  <h1>{{.DeviceName}}</h1>
  <div class="owner">{{.OwnerName}}</div>
  <span class="label">{{.Label}}</span>
  <div class="dates">{{.StartDate}} &rarr; {{.EndDate}}</div>
  <span class="status {{if .Valid}}valid{{else}}invalid{{end}}">{{.Status}}</span>
  <img src="{{.QRImageURL}}" alt="verification code" width="160" height="160">
</div>
</body>
</html>
`))
