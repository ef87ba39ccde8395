package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends notification email over plain SMTP. Delivery is
// best-effort from the engine's point of view; callers log failures and
// move on.
type SMTPMailer struct {
	addr string
	host string
	from string
	user string
	pass string
}

func NewSMTPMailer(addr, host, from, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		addr: addr,
		host: host,
		from: from,
		user: user,
		pass: pass,
	}
}

// Send delivers a single HTML message to one recipient
func (m *SMTPMailer) Send(subject, body, recipient string) error {
	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + recipient + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", recipient, err)
	}
	return nil
}
