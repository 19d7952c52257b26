package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/vanishmail/internal/config"
)

// Mailer sends transactional email. Implementations may fail; callers in the
// OTP flows treat dispatch failure as non-fatal.
type Mailer interface {
	SendSignupOTP(to, code string) error
	SendPasswordResetOTP(to, code string) error
	SendMessage(from, to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendSignupOTP(to, code string) error {
	body, err := renderSignupOTP(code)
	if err != nil {
		return err
	}
	return m.send(m.from, to, "Confirm your vanishmail account", body)
}

func (m *mailer) SendPasswordResetOTP(to, code string) error {
	body, err := renderResetOTP(code)
	if err != nil {
		return err
	}
	return m.send(m.from, to, "Your password reset code", body)
}

// SendMessage relays an outbox message from a disposable address.
func (m *mailer) SendMessage(from, to, subject, body string) error {
	return m.send(from, to, subject, body)
}

func (m *mailer) send(from, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}
