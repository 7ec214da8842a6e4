package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_NAME", "APP_ENV", "APP_HOST", "APP_PORT", "HTTP_REQUEST_TIMEOUT_SECONDS",
		"LOG_LEVEL",
		"TICKETS_CSV", "POSTGRES_DSN", "POSTGRES_MAX_CONNS", "POSTGRES_MIN_CONNS",
		"DOCUMENTS_DIR",
		"MAIL_SENDER_ADDRESS", "MAIL_SENDER_CREDENTIAL", "MAIL_RELAY_HOST",
		"MAIL_RELAY_PORT", "MAIL_SEND_TIMEOUT_SECONDS",
		"STAFF_NOTIFICATION_ADDRESS", "STAFF_DASHBOARD_PASSWORD",
		"AUTH_JWT_SECRET", "AUTH_ACCESS_TOKEN_TTL_MINUTES",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "helpdesk", cfg.App.Name)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	require.Equal(t, "tickets.csv", cfg.Store.CSVPath)
	require.Empty(t, cfg.Store.PostgresDSN)
	require.Equal(t, "documents", cfg.Docs.Root)

	require.Equal(t, "smtp.gmail.com", cfg.Mail.RelayHost)
	require.Equal(t, 465, cfg.Mail.RelayPort)
	require.Equal(t, 15*time.Second, cfg.Mail.SendTimeout())
	require.False(t, cfg.Mail.Configured())

	require.False(t, cfg.Staff.GateEnabled())
	require.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("TICKETS_CSV", "/var/lib/helpdesk/tickets.csv")
	t.Setenv("MAIL_SENDER_ADDRESS", "helpdesk@example.com")
	t.Setenv("MAIL_SENDER_CREDENTIAL", "app-password")
	t.Setenv("MAIL_RELAY_PORT", "587")
	t.Setenv("STAFF_DASHBOARD_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	require.Equal(t, "/var/lib/helpdesk/tickets.csv", cfg.Store.CSVPath)
	require.True(t, cfg.Mail.Configured())
	require.Equal(t, 587, cfg.Mail.RelayPort)
	require.True(t, cfg.Staff.GateEnabled())
}

func TestLoadRejectsBadRelayPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAIL_RELAY_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}
