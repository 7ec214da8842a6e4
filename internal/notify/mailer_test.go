package notify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

func TestSendWithoutCredentialsIsSoftFailure(t *testing.T) {
	notifier := NewSMTPNotifier(config.MailConfig{}, zap.NewNop())

	sent := notifier.Send(context.Background(), Email{
		To:      "alice@example.com",
		Subject: "Ticket update",
		Body:    "Hello",
	})
	require.False(t, sent)
}

func TestComposePlainMessage(t *testing.T) {
	msg, err := Compose("helpdesk@example.com", Email{
		To:      "alice@example.com",
		Subject: "Ticket update",
		Body:    "Your ticket has been updated.",
	}, zap.NewNop())
	require.NoError(t, err)

	text := string(msg)
	require.Contains(t, text, "From: <helpdesk@example.com>")
	require.Contains(t, text, "To: <alice@example.com>")
	require.Contains(t, text, "Subject: Ticket update")
	require.Contains(t, text, "Your ticket has been updated.")
}

func TestComposeWithAttachments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf bytes"), 0o644))

	msg, err := Compose("helpdesk@example.com", Email{
		To:          "alice@example.com",
		Subject:     "Ticket update",
		Body:        "See attached.",
		Attachments: []string{path},
	}, zap.NewNop())
	require.NoError(t, err)

	text := string(msg)
	require.Contains(t, text, "receipt.pdf")
	require.Contains(t, text, "Content-Disposition: attachment")
}

func TestComposeSkipsUnreadableAttachment(t *testing.T) {
	msg, err := Compose("helpdesk@example.com", Email{
		To:          "alice@example.com",
		Subject:     "Ticket update",
		Body:        "See attached.",
		Attachments: []string{filepath.Join(t.TempDir(), "missing.pdf")},
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotContains(t, string(msg), "missing.pdf")
}
