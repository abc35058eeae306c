package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"trackit-api/internal/logger"

	"github.com/cenkalti/backoff/v4"
)

// Mailer delivers account emails.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

const resetSubject = "TrackIt password reset"

// SMTPMailer sends mail through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	// Retries is the number of extra attempts after the first failure.
	Retries  uint64
	Interval time.Duration

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		Retries:  3,
		Interval: 500 * time.Millisecond,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	msg := BuildMessage(m.From, to, resetSubject, ResetBody(link))
	return m.deliver(ctx, to, msg)
}

func (m *SMTPMailer) deliver(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.Host, m.Port)
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	err := backoff.Retry(
		func() error {
			if sendErr := m.send(addr, auth, m.From, []string{to}, msg); sendErr != nil {
				logger.Warnf(ctx, "smtp send to %s failed: %v", to, sendErr)
				return fmt.Errorf("smtp.SendMail: %w", sendErr)
			}
			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(m.Interval), m.Retries),
			ctx,
		),
	)
	if err != nil {
		return fmt.Errorf("deliver mail: %w", err)
	}
	return nil
}

// LogMailer writes the reset link to the log instead of sending it.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	logger.Infof(ctx, "SMTP disabled, password reset email for %s not sent", to)
	logger.Debugf(ctx, "password reset link for %s: %s", to, link)
	return nil
}

// BuildMessage renders an HTML email with headers.
func BuildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// ResetBody is the HTML body of the password reset email.
func ResetBody(link string) string {
	return `<html><body style="font-family: Arial, sans-serif;">` +
		`<h2>Reset your password</h2>` +
		`<p>We received a request to reset the password of your TrackIt account.</p>` +
		`<p><a href="` + link + `">Click here to choose a new password</a></p>` +
		`<p>This link is valid for 10 minutes. If you did not request it, ignore this email.</p>` +
		`</body></html>`
}

var (
	mu      sync.RWMutex
	current Mailer = LogMailer{}
)

// Set replaces the process mailer.
func Set(m Mailer) {
	mu.Lock()
	defer mu.Unlock()
	current = m
}

// Get returns the process mailer.
func Get() Mailer {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
