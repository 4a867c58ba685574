package worker

import (
	"fmt"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/auditorio-asientos/backend/config"
)

// Invitation is one invitation email to deliver.
type Invitation struct {
	RecipientEmail string
	RecipientName  string
	EventName      string
	Subject        string
	InviteLink     string
}

// Mailer delivers invitation emails.
type Mailer interface {
	SendInvitation(inv Invitation) error
}

// NewMailer returns the configured mail provider: SMTP when configured,
// otherwise a simulate provider that only logs.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.Provider == "smtp" && cfg.SMTPHost != "" {
		return &smtpMailer{cfg: cfg}
	}
	return &simulateMailer{logger: logger}
}

type smtpMailer struct {
	cfg config.MailConfig
}

func (m *smtpMailer) SendInvitation(inv Invitation) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromAddress); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(inv.RecipientEmail); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	subject := inv.Subject
	if subject == "" {
		subject = "Invitación: " + inv.EventName
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hola %s,\n\nEstás invitado/a a %s.\n\nElige tu asiento aquí: %s\n",
		inv.RecipientName, inv.EventName, inv.InviteLink))
	msg.AddAlternativeString(mail.TypeTextHTML, fmt.Sprintf(
		`<p>Hola %s,</p><p>Estás invitado/a a <strong>%s</strong>.</p><p><a href="%s">Elige tu asiento</a></p>`,
		inv.RecipientName, inv.EventName, inv.InviteLink))

	client, err := mail.NewClient(m.cfg.SMTPHost,
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.SMTPUser),
		mail.WithPassword(m.cfg.SMTPPass),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}

// simulateMailer pretends every delivery succeeds. Used in development and
// for dry-run campaigns.
type simulateMailer struct {
	logger *zap.Logger
}

func (m *simulateMailer) SendInvitation(inv Invitation) error {
	m.logger.Info("simulated invitation email",
		zap.String("to", inv.RecipientEmail),
		zap.String("event", inv.EventName),
		zap.String("link", inv.InviteLink))
	return nil
}
