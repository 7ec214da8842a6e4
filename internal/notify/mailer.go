// Package notify delivers outbound ticket mail over SMTP.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

// Email is one outbound message. Attachments are paths of files read fully
// into memory at send time.
type Email struct {
	To          string
	Subject     string
	Body        string
	Attachments []string
}

// Notifier sends mail best-effort: a false result means the message was not
// delivered, and the caller's flow continues regardless.
type Notifier interface {
	Send(ctx context.Context, email Email) bool
}

// SMTPNotifier delivers over an authenticated, TLS-protected connection to
// the configured relay. It never sends over a plaintext channel.
type SMTPNotifier struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewSMTPNotifier constructs the notifier.
func NewSMTPNotifier(cfg config.MailConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// Send composes and delivers the message. Unconfigured sender credentials
// downgrade to a false result without dialing, so ticket flows complete even
// on a box with no mail setup. Transport failures are logged, never raised.
func (n *SMTPNotifier) Send(ctx context.Context, email Email) bool {
	if !n.cfg.Configured() {
		n.logger.Warn("mail sender not configured; skipping send",
			zap.String("to", email.To),
			zap.String("subject", email.Subject))
		return false
	}

	msg, err := Compose(n.cfg.SenderAddress, email, n.logger)
	if err != nil {
		n.logger.Error("failed to compose mail", zap.Error(err))
		return false
	}
	if err := n.deliver(ctx, email.To, msg); err != nil {
		n.logger.Error("failed to send mail",
			zap.String("to", email.To),
			zap.String("subject", email.Subject),
			zap.Error(err))
		return false
	}
	return true
}

// Compose renders a MIME message: a text/plain part plus each readable
// attachment as opaque binary under its base filename. An unreadable
// attachment is skipped with a warning, not fatal to the message.
func Compose(from string, email Email, logger *zap.Logger) ([]byte, error) {
	var buf bytes.Buffer

	var header mail.Header
	header.SetDate(time.Now())
	header.SetSubject(email.Subject)
	header.SetAddressList("From", []*mail.Address{{Address: from}})
	header.SetAddressList("To", []*mail.Address{{Address: email.To}})

	writer, err := mail.CreateWriter(&buf, header)
	if err != nil {
		return nil, fmt.Errorf("create mail writer: %w", err)
	}

	var bodyHeader mail.InlineHeader
	bodyHeader.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	bodyWriter, err := writer.CreateSingleInline(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("create body part: %w", err)
	}
	if _, err := io.WriteString(bodyWriter, email.Body); err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}
	if err := bodyWriter.Close(); err != nil {
		return nil, fmt.Errorf("close body part: %w", err)
	}

	for _, path := range email.Attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable attachment",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		var attHeader mail.AttachmentHeader
		attHeader.SetContentType("application/octet-stream", nil)
		attHeader.SetFilename(filepath.Base(path))
		attWriter, err := writer.CreateAttachment(attHeader)
		if err != nil {
			return nil, fmt.Errorf("create attachment part: %w", err)
		}
		if _, err := attWriter.Write(data); err != nil {
			return nil, fmt.Errorf("write attachment: %w", err)
		}
		if err := attWriter.Close(); err != nil {
			return nil, fmt.Errorf("close attachment part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close mail writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (n *SMTPNotifier) deliver(ctx context.Context, to string, msg []byte) error {
	client, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", n.cfg.SenderAddress, n.cfg.SenderCredential, n.cfg.RelayHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(n.cfg.SenderAddress); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("initiate data transfer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data transfer: %w", err)
	}
	return client.Quit()
}

// dial opens a TLS connection to the relay. Port 465 uses implicit TLS;
// any other port upgrades with STARTTLS. The connection deadline bounds the
// whole session.
func (n *SMTPNotifier) dial(ctx context.Context) (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", n.cfg.RelayHost, n.cfg.RelayPort)
	timeout := n.cfg.SendTimeout()
	dialer := &net.Dialer{Timeout: timeout}
	tlsCfg := &tls.Config{ServerName: n.cfg.RelayHost}

	if n.cfg.RelayPort == 465 {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsCfg)
		if err != nil {
			return nil, fmt.Errorf("connect via smtps: %w", err)
		}
		_ = conn.SetDeadline(time.Now().Add(timeout))
		client, err := smtp.NewClient(conn, n.cfg.RelayHost)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("create smtp client: %w", err)
		}
		return client, nil
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to relay: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))
	client, err := smtp.NewClient(conn, n.cfg.RelayHost)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.StartTLS(tlsCfg); err != nil {
		client.Close()
		return nil, fmt.Errorf("start tls: %w", err)
	}
	return client, nil
}
