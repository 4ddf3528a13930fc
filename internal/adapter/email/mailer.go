// Package email delivers notification mail over SMTP.
package email

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Dialer is the part of gomail.Dialer the mailer uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	dialer Dialer
	from   string
	logger *logger.Logger
}

func NewMailer(cfg Config, log *logger.Logger) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return NewMailerWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), from, log)
}

func NewMailerWithDialer(d Dialer, from string, log *logger.Logger) *Mailer {
	return &Mailer{dialer: d, from: from, logger: log.Named("Mailer")}
}

// Send delivers an HTML message. gomail has no context support, so ctx is
// only checked before dialing.
func (m *Mailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send email", zap.Strings("to", to), zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("send email %q: %w", subject, err)
	}
	m.logger.Info("Email sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}
