package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gopkg.in/gomail.v2"
)

// Notifier delivers transactional email.
type Notifier interface {
	Send(ctx context.Context, recipients []string, subject, bodyHTML string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier sends mail through an SMTP relay.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, recipients []string, subject, bodyHTML string) error {
	if len(recipients) == 0 {
		return errors.New("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", bodyHTML)

	return n.dialer.DialAndSend(m)
}

// LogNotifier stands in when SMTP is not configured and only logs what would be sent.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, recipients []string, subject, _ string) error {
	utils.InfoLogger.WithFields(logrus.Fields{
		"to":      strings.Join(recipients, ","),
		"subject": subject,
	}).Info("SMTP not configured, email skipped")
	return nil
}
