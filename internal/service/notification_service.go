package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/notify"
)

// NotificationService turns ticket events into outbound mail. Every send is
// best-effort; the originating mutation has already committed by the time a
// handler runs.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notify.Notifier
	logger     *zap.Logger
	staff      config.StaffConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notify.Notifier, logger *zap.Logger, staff config.StaffConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
		staff:      staff,
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	if n.staff.NotificationAddress == "" {
		n.logger.Warn("staff notification address not configured; skipping new ticket alert",
			zap.String("ticket_id", event.TicketID))
		return nil
	}

	t := payload.Ticket
	email := notify.Email{
		To:      n.staff.NotificationAddress,
		Subject: fmt.Sprintf("[New Helpdesk Ticket] %s - %s", t.TicketID, t.Concern),
		Body: fmt.Sprintf(`A new helpdesk ticket has been raised.

Ticket ID: %s
Employee: %s (%s) <%s>
Role: %s
Department: %s
Concern: %s
Description:
%s

Created at: %s
`, t.TicketID, t.EmployeeName, t.EmployeeID, t.EmployeeEmail, t.EmployeeRole, t.Department, t.Concern, t.Description, t.CreatedAt),
	}

	sent := n.notifier.Send(ctx, email)
	n.logger.Info("new ticket alert",
		zap.String("ticket_id", t.TicketID),
		zap.Bool("sent", sent))
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return nil
	}

	t := payload.Ticket
	email := notify.Email{
		To:      t.EmployeeEmail,
		Subject: fmt.Sprintf("[Helpdesk Ticket Update] %s", t.TicketID),
		Body: fmt.Sprintf(`Hello %s,

Your ticket %s (Concern: %s) has been updated.

Staff note:
%s

Status: %s
Updated at: %s

Regards,
Helpdesk Team
`, t.EmployeeName, t.TicketID, t.Concern, payload.Note, t.Status, domain.Timestamp(time.Now())),
		Attachments: payload.AttachmentPaths,
	}

	sent := n.notifier.Send(ctx, email)
	n.logger.Info("ticket update notification",
		zap.String("ticket_id", t.TicketID),
		zap.String("to", t.EmployeeEmail),
		zap.Bool("sent", sent))
	return nil
}
