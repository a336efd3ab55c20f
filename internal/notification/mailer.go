package notification

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/frahmantamala/school-platform/internal"
)

type Attachment struct {
	Name string
	Data []byte
}

type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers messages over SMTP, one connection per message.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func NewSMTPMailer(cfg internal.MailConfig, logger *slog.Logger) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
		logger: logger,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)
	for _, a := range msg.Attachments {
		data := a.Data
		gm.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		m.logger.Error("failed to send email", "error", err, "to", msg.To, "subject", msg.Subject)
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}
