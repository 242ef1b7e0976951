// Package mail delivers notification emails over SMTP. Every Send dials a
// fresh session (connect, authenticate, send, close) so no credential or
// connection state is shared between concurrent pipeline runs.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/matching"
)

const defaultTimeout = 30 * time.Second

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []matching.Attachment
}

type Sender struct {
	cfg    Config
	logger *zap.Logger
}

func NewSender(cfg Config, logger *zap.Logger) (*Sender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp sender address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sender{cfg: cfg, logger: logger}, nil
}

// Send delivers a single message within a bounded timeout.
func (s *Sender) Send(ctx context.Context, message Message) error {
	if strings.TrimSpace(message.To) == "" {
		return errors.New("recipient address is required")
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, message.Body)

	for _, attachment := range message.Attachments {
		if err := msg.AttachReader(attachment.Filename, bytes.NewReader(attachment.Data)); err != nil {
			return fmt.Errorf("attach %s: %w", attachment.Filename, err)
		}
	}

	client, err := s.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", message.To, err)
	}

	s.logger.Info("email sent",
		zap.String("to", message.To),
		zap.String("subject", message.Subject),
		zap.Int("attachments", len(message.Attachments)),
	)

	return nil
}

func (s *Sender) newClient() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(s.cfg.Timeout),
	}

	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return client, nil
}
