// Package delivery sends the rendered newsletter over SMTP.
//
// Messages go out as multipart/alternative with a plain-text part and the
// HTML digest, one SMTP transaction per recipient so a bad address never
// blocks the rest of the list. STARTTLS is negotiated automatically when
// the server offers it. Credentials never appear in error text.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"newsreel/internal/config"
	"newsreel/internal/logging"
)

// Message is one newsletter ready for delivery.
type Message struct {
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender delivers a message to a recipient list. The pipeline shell depends
// only on this interface; preview and dry runs use none at all.
type Sender interface {
	Send(ctx context.Context, msg Message, recipients []string) error
}

// SMTPSender delivers via a configured SMTP relay.
type SMTPSender struct {
	cfg    config.Email
	logger *slog.Logger

	// sendMail is swapped in tests.
	sendMail func(addr string, auth smtp.Auth, from string, to []string, body []byte) error
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender constructs a sender from email configuration.
func NewSMTPSender(cfg config.Email, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "delivery"),
		sendMail: smtp.SendMail,
	}
}

// Send delivers the message to each recipient in turn. The first transport
// failure aborts the remaining sends; earlier recipients keep their copy.
func (s *SMTPSender) Send(ctx context.Context, msg Message, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPServer, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPServer)
	}

	for i, recipient := range recipients {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("delivery cancelled after %d of %d recipients: %w", i, len(recipients), err)
		}
		body, err := buildMIMEMessage(s.cfg.SenderEmail, recipient, msg)
		if err != nil {
			return fmt.Errorf("build message: %w", err)
		}
		if err := s.sendMail(addr, auth, s.cfg.SenderEmail, []string{recipient}, body); err != nil {
			return fmt.Errorf("send via %s after %d of %d recipients: %w", s.cfg.SMTPServer, i, len(recipients), err)
		}
	}
	s.logger.Info("newsletter delivered", logging.Args(logging.Int("recipients", len(recipients)))...)
	return nil
}

// buildMIMEMessage assembles a multipart/alternative body with plain and
// HTML parts. Mail clients pick the richest part they support.
func buildMIMEMessage(from, to string, msg Message) ([]byte, error) {
	var sb strings.Builder
	var bodyBuf strings.Builder
	writer := multipart.NewWriter(&bodyBuf)

	plain, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := plain.Write([]byte(msg.PlainBody)); err != nil {
		return nil, err
	}

	html, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(msg.HTMLBody)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + sanitizeHeader(msg.Subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(`Content-Type: multipart/alternative; boundary="` + writer.Boundary() + `"` + "\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(bodyBuf.String())
	return []byte(sb.String()), nil
}

// sanitizeHeader strips CR and LF so subject text cannot inject headers.
func sanitizeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.ReplaceAll(value, "\n", " ")
}
