package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

func (m Message) bytes() []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.From, strings.Join(m.To, ", "), m.Subject, m.Body))
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	addr string
	auth smtp.Auth
}

// NewSMTPSender dials addr for every message. Credentials are optional, a
// local relay such as mailpit takes none.
func NewSMTPSender(host string, port int, username, password string) Sender {
	s := &smtpSender{addr: fmt.Sprintf("%s:%d", host, port)}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, msg.From, msg.To, msg.bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// ConfirmationMessage is the mail carrying a signup code.
func ConfirmationMessage(from string, p ConfirmationPayload) Message {
	return Message{
		From:    from,
		To:      []string{p.Email},
		Subject: "Registration code",
		Body: fmt.Sprintf("Hello, %s!\n\nYour confirmation code: %s\n\n"+
			"Exchange it for an access token at /api/v1/auth/token. The code works once.\n",
			p.Username, p.Code),
	}
}
