package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/gestor-tarefas/internal/config"
)

func TestNewResetMessage(t *testing.T) {
	msg := NewResetMessage("noreply@example.com", "bob@example.com", "http://localhost:5000/reset-password/abc")

	assert.Equal(t, []string{"bob@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{resetSubject}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "http://localhost:5000/reset-password/abc")
	assert.Contains(t, buf.String(), "text/html")
}

func TestNewSender(t *testing.T) {
	var out bytes.Buffer
	log := zerolog.New(&out)

	sender := NewSender(config.MailConfig{}, log)
	require.IsType(t, &LogSender{}, sender)
	require.NoError(t, sender.SendPasswordReset(context.Background(), "bob@example.com", "http://x/reset-password/secret"))
	assert.Contains(t, out.String(), "bob@example.com")
	assert.NotContains(t, out.String(), "secret")

	smtp := NewSender(config.MailConfig{Server: "smtp.example.com", Port: 587, Username: "user"}, log)
	assert.IsType(t, &SMTPSender{}, smtp)
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	sender := NewSMTPSender(config.MailConfig{Server: "smtp.example.com", Port: 587, Username: "user"}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.SendPasswordReset(ctx, "bob@example.com", "http://x"), context.Canceled)
}
