package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
)

// Sender delivers plain-text mail.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes messages to the log instead of sending them. Used when
// SMTP is not configured.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a sender that only logs
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.WithFields(map[string]interface{}{
		"to":      to,
		"subject": subject,
	}).Debug(body)
	return nil
}

// SMTPSender sends mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender returns an SMTP sender when cfg names a host, a LogSender otherwise.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return NewLogSender(log)
	}

	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	return &SMTPSender{
		addr:     cfg.SMTPHost + ":" + strconv.Itoa(cfg.SMTPPort),
		host:     cfg.SMTPHost,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     from,
		send:     smtp.SendMail,
	}
}

// Send delivers one message
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	err := s.send(s.addr, auth, envelopeAddress(s.from), []string{to}, buildMessage(s.from, to, subject, body))
	metrics.RecordIntegrationCall("smtp", err)
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\n", from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n" +
			"\r\n" +
			body + "\r\n",
	)
}

// envelopeAddress strips a display name: "Band <a@b>" becomes "a@b".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		return strings.TrimSuffix(from[i+1:], ">")
	}
	return from
}

// MemberInvite renders the access mail sent to a new band member.
func MemberInvite(bandName, memberName, link string) (subject, body string) {
	subject = fmt.Sprintf("You have been added to %s", bandName)
	body = fmt.Sprintf("Hi %s,\n\n"+
		"You now have access to the setlists of %s.\n"+
		"Open this link to sign in:\n\n%s\n\n"+
		"Keep this link private. Anyone holding it can view the band.\n",
		memberName, bandName, link)
	return subject, body
}
