package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service. It is constructed
// once at process start and passed into constructors; business logic never
// reads the environment directly.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Store  StoreConfig
	Docs   DocsConfig
	Mail   MailConfig
	Staff  StaffConfig
	Auth   AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// StoreConfig selects and locates the ticket table backend.
type StoreConfig struct {
	CSVPath     string
	PostgresDSN string
	MaxConns    int32
	MinConns    int32
}

// DocsConfig locates per-ticket attachment storage.
type DocsConfig struct {
	Root string
}

// MailConfig holds outbound SMTP settings.
type MailConfig struct {
	SenderAddress      string
	SenderCredential   string
	RelayHost          string
	RelayPort          int
	SendTimeoutSeconds int
}

// StaffConfig holds the staff notification address and the optional
// dashboard gate.
type StaffConfig struct {
	NotificationAddress string
	DashboardPassword   string
}

// AuthConfig defines staff token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	relayPort, err := strconv.Atoi(getEnv("MAIL_RELAY_PORT", "465"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_RELAY_PORT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			CSVPath:     getEnv("TICKETS_CSV", "tickets.csv"),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
			MaxConns:    int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:    int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
		},
		Docs: DocsConfig{
			Root: getEnv("DOCUMENTS_DIR", "documents"),
		},
		Mail: MailConfig{
			SenderAddress:      os.Getenv("MAIL_SENDER_ADDRESS"),
			SenderCredential:   os.Getenv("MAIL_SENDER_CREDENTIAL"),
			RelayHost:          getEnv("MAIL_RELAY_HOST", "smtp.gmail.com"),
			RelayPort:          relayPort,
			SendTimeoutSeconds: getEnvAsInt("MAIL_SEND_TIMEOUT_SECONDS", 15),
		},
		Staff: StaffConfig{
			NotificationAddress: os.Getenv("STAFF_NOTIFICATION_ADDRESS"),
			DashboardPassword:   os.Getenv("STAFF_DASHBOARD_PASSWORD"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Configured reports whether outbound mail has usable sender credentials.
func (m MailConfig) Configured() bool {
	return m.SenderAddress != "" && m.SenderCredential != ""
}

// SendTimeout bounds each SMTP dial and send.
func (m MailConfig) SendTimeout() time.Duration {
	if m.SendTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(m.SendTimeoutSeconds) * time.Second
}

// GateEnabled reports whether the staff dashboard requires a password.
func (s StaffConfig) GateEnabled() bool {
	return s.DashboardPassword != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
