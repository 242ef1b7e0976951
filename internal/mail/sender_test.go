package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSenderValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSender(Config{From: "noreply@example.com"}, nil)
	require.Error(t, err)

	_, err = NewSender(Config{Host: "smtp.example.com"}, nil)
	require.Error(t, err)

	sender, err := NewSender(Config{Host: "smtp.example.com", From: "noreply@example.com"}, nil)
	require.NoError(t, err)
	require.Equal(t, 587, sender.cfg.Port)
	require.Equal(t, defaultTimeout, sender.cfg.Timeout)
}

func TestNewSenderKeepsExplicitSettings(t *testing.T) {
	t.Parallel()

	sender, err := NewSender(Config{
		Host:    "smtp.example.com",
		From:    "noreply@example.com",
		Port:    2525,
		Timeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 2525, sender.cfg.Port)
	require.Equal(t, 5*time.Second, sender.cfg.Timeout)
}

func TestSendRequiresRecipient(t *testing.T) {
	t.Parallel()

	sender, err := NewSender(Config{Host: "smtp.example.com", From: "noreply@example.com"}, nil)
	require.NoError(t, err)

	err = sender.Send(context.Background(), Message{Subject: "hi", Body: "body"})
	require.Error(t, err)
}
