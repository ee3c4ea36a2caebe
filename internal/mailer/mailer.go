// Package mailer delivers one-time codes by email.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// CodeSender delivers a one-time signing code to an address.
type CodeSender interface {
	SendCode(email, code string) error
}

// SMTPMailer sends codes through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendCode(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your contract signing code")
	msg.SetBody("text/html", fmt.Sprintf(
		"<h1>Contract signing</h1><p>Your one-time code is:</p><h2>%s</h2><p>The code expires in one hour.</p>",
		code,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailer: send code to %s: %w", email, err)
	}
	return nil
}
