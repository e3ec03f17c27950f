// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailer delivers transactional email (password reset links).

Two drivers exist:

  - SMTP: real delivery through wneessen/go-mail.
  - Log: development driver that records that a message would have been sent.
    It never logs the body, because the body carries a reset token.
*/
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// sendTimeout bounds a single SMTP conversation.
const sendTimeout = 15 * time.Second

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a message or reports why it could not.
type Mailer interface {
	Send(context context.Context, message Message) error
}

// # SMTP Driver

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through an SMTP relay, upgrading to STARTTLS when offered.
type SMTPMailer struct {
	config SMTPConfig
}

// NewSMTPMailer creates an SMTP driver. No connection is opened until Send.
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// Send opens a connection, delivers message and closes the connection.
func (mailer *SMTPMailer) Send(context context.Context, message Message) error {
	msg, err := newMessage(mailer.config.From, message)
	if err != nil {
		return err
	}

	options := []mail.Option{
		mail.WithPort(mailer.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(sendTimeout),
	}
	if mailer.config.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(mailer.config.Username),
			mail.WithPassword(mailer.config.Password),
		)
	}

	client, err := mail.NewClient(mailer.config.Host, options...)
	if err != nil {
		return fmt.Errorf("mailer: failed to configure smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(context, msg); err != nil {
		return fmt.Errorf("mailer: smtp delivery failed: %w", err)
	}

	return nil
}

// newMessage assembles the MIME message.
func newMessage(from string, message Message) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("mailer: invalid sender address: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("mailer: invalid recipient address: %w", err)
	}

	msg.Subject(message.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, message.Body)

	return msg, nil
}

// # Log Driver

// LogMailer pretends to deliver and records the envelope only.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a development driver.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the recipient and subject.
func (mailer *LogMailer) Send(context context.Context, message Message) error {
	mailer.logger.InfoContext(context, "mail_delivery_skipped",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.Int("body_bytes", len(message.Body)),
	)
	return nil
}
