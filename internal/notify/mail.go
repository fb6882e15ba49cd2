// Package notify delivers rendered reports. Senders report success as a
// bool: the timing triggers stay armed on false and retry on the next
// tick, so delivery failures are never escalated.
package notify

import (
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"goaltick/internal/config"
	appLog "goaltick/internal/log"
)

// Sender delivers one rendered report.
type Sender interface {
	Send(subject, body string) bool
}

// Mailer sends reports over SMTP using the configured account.
type Mailer struct {
	cfg     config.SMTPConfig
	timeout time.Duration
}

// NewMailer builds a Mailer from config.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		cfg:     cfg,
		timeout: 15 * time.Second,
	}
}

// Send delivers the report and returns whether delivery was confirmed.
func (m *Mailer) Send(subject, body string) bool {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := buildMessage(m.cfg.From, m.cfg.To, subject, body)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			appLog.Error("mail send failed", err, "to", m.cfg.To, "subject", subject)
			return false
		}
	case <-time.After(m.timeout):
		appLog.Error("mail send timed out", fmt.Errorf("no response within %s", m.timeout),
			"to", m.cfg.To, "subject", subject)
		return false
	}

	appLog.Info("mail sent", "to", m.cfg.To, "subject", subject)
	return true
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogSender is the no-SMTP fallback: it logs the report and reports
// success, so the triggers still complete their state transitions in
// installs without mail configured.
type LogSender struct{}

func (LogSender) Send(subject, body string) bool {
	appLog.Info("report (mail disabled)", "subject", subject, "chars", len(body))
	return true
}
