package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/expensetracker/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSMTPConfig() *config.SMTPConfig {
	return &config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "mailer",
		Password: "secret",
		From:     "noreply@expensetracker.local",
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	var sentAddr, sentFrom string
	var sentTo []string
	var sentBody []byte

	m := NewSMTPMailer(testSMTPConfig(), zap.NewNop())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sentAddr, sentFrom, sentTo, sentBody = addr, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{
		To:       "alice@example.com",
		Subject:  WelcomeSubject,
		HTMLBody: WelcomeBody("alice"),
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", sentAddr)
	assert.Equal(t, "noreply@expensetracker.local", sentFrom)
	assert.Equal(t, []string{"alice@example.com"}, sentTo)
	assert.Contains(t, string(sentBody), "Subject: Welcome to Smart Expense Tracker!")
	assert.Contains(t, string(sentBody), "Content-Type: text/html")
	assert.Contains(t, string(sentBody), "Hi alice,")
}

func TestSMTPMailer_SendFailure(t *testing.T) {
	m := NewSMTPMailer(testSMTPConfig(), zap.NewNop())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := m.Send(context.Background(), Message{To: "a@b.c", Subject: "s", HTMLBody: "b"})
	assert.Error(t, err)
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(testSMTPConfig(), zap.NewNop())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		t.Fatal("send should not be reached")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, Message{To: "a@b.c"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewMailer(t *testing.T) {
	t.Run("empty host picks the no-op mailer", func(t *testing.T) {
		m := NewMailer(&config.SMTPConfig{}, zap.NewNop())
		_, ok := m.(*NoopMailer)
		assert.True(t, ok)

		assert.NoError(t, m.Send(context.Background(), Message{To: "a@b.c"}))
	})

	t.Run("configured host picks the SMTP mailer", func(t *testing.T) {
		m := NewMailer(testSMTPConfig(), zap.NewNop())
		_, ok := m.(*SMTPMailer)
		assert.True(t, ok)
	})
}

func TestWelcomeBody(t *testing.T) {
	t.Run("escapes the username", func(t *testing.T) {
		body := WelcomeBody("<script>x</script>")
		assert.NotContains(t, body, "<script>")
	})

	t.Run("falls back to a generic greeting", func(t *testing.T) {
		assert.Contains(t, WelcomeBody(""), "Hi User,")
	})
}

func TestBudgetAlertBody(t *testing.T) {
	body := BudgetAlertBody(
		decimal.RequireFromString("200.00"),
		decimal.RequireFromString("250.00"),
		"",
	)
	assert.Contains(t, body, "Overall budget")
	assert.Contains(t, body, "$200.00")
	assert.Contains(t, body, "$250.00")
	assert.Contains(t, body, "125%")
	assert.Contains(t, body, "$50.00")
}
