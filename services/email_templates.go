package services

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yeremiapane/restaurant-booking/models"
)

var reservationEmailTmpl = template.Must(template.New("reservation").Parse(`<p>Dear {{.Res.CustomerName}},</p>
<p>{{.Intro}}</p>
<table>
<tr><td>Reference</td><td>{{.Res.ConfirmationCode}}</td></tr>
<tr><td>Date</td><td>{{.Res.ReservationDate}}</td></tr>
<tr><td>Time</td><td>{{.Res.ReservationTime}}</td></tr>
<tr><td>Guests</td><td>{{.Res.NumberOfGuests}}</td></tr>
<tr><td>Table</td><td>{{.Res.Table.Number}}</td></tr>
<tr><td>Status</td><td>{{.Res.Status}}</td></tr>
{{if .Res.SpecialRequests}}<tr><td>Requests</td><td>{{.Res.SpecialRequests}}</td></tr>{{end}}
</table>`))

var banquetEmailTmpl = template.Must(template.New("banquet").Parse(`<p>{{.Intro}}</p>
<table>
<tr><td>Reference</td><td>{{.B.ReferenceCode}}</td></tr>
<tr><td>Customer</td><td>{{.B.CustomerName}} ({{.B.CustomerEmail}}, {{.B.CustomerPhone}})</td></tr>
<tr><td>Event</td><td>{{.B.EventType}}</td></tr>
<tr><td>Date</td><td>{{.B.EventDate}} {{.B.StartTime}}-{{.B.EndTime}}</td></tr>
<tr><td>Guests</td><td>{{.B.GuestCount}}</td></tr>
<tr><td>Status</td><td>{{.B.Status}}</td></tr>
</table>`))

var contactEmailTmpl = template.Must(template.New("contact").Parse(`<p>New message from {{.Name}} ({{.Email}}{{if .Phone}}, {{.Phone}}{{end}})</p>
<p><strong>{{.Subject}}</strong></p>
<p>{{.Message}}</p>`))

func renderReservationEmail(intro string, res *models.Reservation) (string, error) {
	var buf bytes.Buffer
	err := reservationEmailTmpl.Execute(&buf, struct {
		Intro string
		Res   *models.Reservation
	}{intro, res})
	if err != nil {
		return "", fmt.Errorf("render reservation email: %w", err)
	}
	return buf.String(), nil
}

func renderBanquetEmail(intro string, b *models.BanquetBooking) (string, error) {
	var buf bytes.Buffer
	err := banquetEmailTmpl.Execute(&buf, struct {
		Intro string
		B     *models.BanquetBooking
	}{intro, b})
	if err != nil {
		return "", fmt.Errorf("render banquet email: %w", err)
	}
	return buf.String(), nil
}

func renderContactEmail(m *models.ContactMessage) (string, error) {
	var buf bytes.Buffer
	if err := contactEmailTmpl.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return buf.String(), nil
}
