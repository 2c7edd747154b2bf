// Package email は顧客への通知メールを送信します
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"
)

// Config は SMTP の接続設定です
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromName  string
	FromEmail string
}

// Enabled は送信に必要な設定が揃っている場合に true を返します
func (c Config) Enabled() bool {
	return c.Host != "" && c.FromEmail != ""
}

// Client は SMTP でメールを送信するクライアントです
type Client struct {
	cfg Config
}

// NewClient は新しいClientを作成します
func NewClient(cfg Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("smtp host and sender address are required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid smtp port: %d", cfg.Port)
	}
	return &Client{cfg: cfg}, nil
}

// SendEmail はテキストメールを1通送信します
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	m, err := c.newMessage(to, subject, body)
	if err != nil {
		return err
	}

	log.Printf("SMTP: connecting to %s:%d as user=%s", c.cfg.Host, c.cfg.Port, c.cfg.User)

	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{ServerName: c.cfg.Host}),
	}
	if c.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.cfg.User),
			mail.WithPassword(c.cfg.Password),
		)
	}

	client, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client (host=%s port=%d): %w", c.cfg.Host, c.cfg.Port, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail to %s (host=%s port=%d): %w", to, c.cfg.Host, c.cfg.Port, err)
	}
	return nil
}

func (c *Client) newMessage(to, subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(c.cfg.FromName, c.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}
