package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/attachments"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/store"
	"github.com/spec-kit/helpdesk/internal/ticketid"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// recentLimit caps the submitter's recent-tickets view.
const recentLimit = 10

// defaultUpdatedBy is stamped on staff updates when no staff address is
// configured.
const defaultUpdatedBy = "staff"

// TicketService coordinates the create and update ticket workflows. It is
// the only component carrying policy logic.
type TicketService struct {
	store       store.TicketStore
	attachments *attachments.Manager
	dispatcher  events.Dispatcher
	staff       config.StaffConfig
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store       store.TicketStore
	Attachments *attachments.Manager
	Dispatcher  events.Dispatcher
	Staff       config.StaffConfig
}

// Submission describes the seven intake fields of a new ticket.
type Submission struct {
	EmployeeEmail string
	EmployeeName  string
	EmployeeRole  string
	EmployeeID    string
	Department    string
	Concern       string
	Description   string
}

// FileUpload is one document attached during an update.
type FileUpload struct {
	Name string
	Data []byte
}

// UpdateInput describes a staff update to an existing ticket.
type UpdateInput struct {
	TicketID  string
	NewStatus domain.TicketStatus
	Note      string
	Remove    []string
	Add       []FileUpload
}

// ConcernBreakdown counts open and closed tickets for one concern.
type ConcernBreakdown struct {
	Concern string `json:"concern"`
	Open    int    `json:"open"`
	Closed  int    `json:"closed"`
}

// Summary carries the dashboard counts and the per-concern chart data.
type Summary struct {
	Total    int                `json:"total"`
	Open     int                `json:"open"`
	Closed   int                `json:"closed"`
	Concerns []ConcernBreakdown `json:"concerns"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		store:       deps.Store,
		attachments: deps.Attachments,
		dispatcher:  deps.Dispatcher,
		staff:       deps.Staff,
	}
}

// Create validates the submission, persists a new open ticket, and emits a
// ticket_created event. Notification failure never rolls the ticket back.
func (s *TicketService) Create(ctx context.Context, sub Submission) (*domain.Ticket, error) {
	sub = sub.trimmed()
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	ticket := domain.Ticket{
		TicketID:      ticketid.New(),
		EmployeeEmail: sub.EmployeeEmail,
		EmployeeName:  sub.EmployeeName,
		EmployeeRole:  sub.EmployeeRole,
		EmployeeID:    sub.EmployeeID,
		Department:    sub.Department,
		Concern:       sub.Concern,
		Description:   sub.Description,
		Status:        domain.TicketStatusOpen,
		CreatedAt:     domain.Timestamp(time.Now()),
		ClosedAt:      "",
		LastUpdatedBy: sub.EmployeeEmail,
	}

	if err := s.store.Append(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.TicketID,
		Payload:  events.TicketCreatedPayload{Ticket: ticket},
	})
	return &ticket, nil
}

// Update applies a staff update: status change, optional note, attachment
// removals and additions. An unknown ticket id fails with NOT_FOUND before
// any mutation; an over-cap set of additions fails before any file write.
func (s *TicketService) Update(ctx context.Context, input UpdateInput) (*domain.Ticket, error) {
	if !domain.ValidStatus(input.NewStatus) {
		return nil, apperrors.NewValidationError("status must be Open or Closed", map[string]any{
			"status": string(input.NewStatus),
		})
	}
	if _, err := s.getByID(ctx, input.TicketID); err != nil {
		return nil, err
	}

	if err := s.checkAttachmentCap(input); err != nil {
		return nil, err
	}
	for _, name := range input.Remove {
		if err := s.attachments.Remove(input.TicketID, name); err != nil {
			return nil, err
		}
	}
	for _, upload := range input.Add {
		if err := s.attachments.Add(input.TicketID, upload.Name, upload.Data); err != nil {
			return nil, err
		}
	}

	updatedBy := s.staff.NotificationAddress
	if updatedBy == "" {
		updatedBy = defaultUpdatedBy
	}
	fieldUpdates := store.FieldUpdates{
		Status:        &input.NewStatus,
		LastUpdatedBy: &updatedBy,
	}
	if input.NewStatus == domain.TicketStatusClosed {
		closedAt := domain.Timestamp(time.Now())
		fieldUpdates.ClosedAt = &closedAt
	}
	// Reopening deliberately leaves a prior closed_at in place.
	ticket, err := s.store.UpdateFields(ctx, input.TicketID, fieldUpdates)
	if err != nil {
		return nil, err
	}

	paths, err := s.attachments.Paths(ticket.TicketID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.TicketID,
		Payload: events.TicketUpdatedPayload{
			Ticket:          *ticket,
			Note:            input.Note,
			AttachmentPaths: paths,
		},
	})
	return ticket, nil
}

// Recent returns the submitter's tickets by exact email match, newest first,
// capped at ten.
func (s *TicketService) Recent(ctx context.Context, email string) ([]domain.Ticket, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	tickets, err := s.store.Filter(ctx, store.FilterOptions{Email: email})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(tickets)
	if len(tickets) > recentLimit {
		tickets = tickets[:recentLimit]
	}
	return tickets, nil
}

// List returns tickets matching the staff dashboard filters, newest first.
func (s *TicketService) List(ctx context.Context, opts store.FilterOptions) ([]domain.Ticket, error) {
	tickets, err := s.store.Filter(ctx, opts)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(tickets)
	return tickets, nil
}

// Attachments lists the filenames currently attached to a ticket.
func (s *TicketService) Attachments(ctx context.Context, ticketID string) ([]string, error) {
	if _, err := s.getByID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.attachments.List(ticketID)
}

// RemoveAttachment deletes one document from a ticket.
func (s *TicketService) RemoveAttachment(ctx context.Context, ticketID, name string) error {
	if _, err := s.getByID(ctx, ticketID); err != nil {
		return err
	}
	return s.attachments.Remove(ticketID, name)
}

// Summarize folds the filtered table into dashboard counts and the
// per-concern open/closed breakdown, sorted by concern.
func (s *TicketService) Summarize(ctx context.Context, opts store.FilterOptions) (*Summary, error) {
	tickets, err := s.store.Filter(ctx, opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(tickets)}
	byConcern := map[string]*ConcernBreakdown{}
	for _, t := range tickets {
		entry, ok := byConcern[t.Concern]
		if !ok {
			entry = &ConcernBreakdown{Concern: t.Concern}
			byConcern[t.Concern] = entry
		}
		if t.Status == domain.TicketStatusClosed {
			summary.Closed++
			entry.Closed++
		} else {
			summary.Open++
			entry.Open++
		}
	}

	summary.Concerns = make([]ConcernBreakdown, 0, len(byConcern))
	for _, entry := range byConcern {
		summary.Concerns = append(summary.Concerns, *entry)
	}
	sort.Slice(summary.Concerns, func(i, j int) bool {
		return summary.Concerns[i].Concern < summary.Concerns[j].Concern
	})
	return summary, nil
}

func (s *TicketService) getByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	tickets, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		if tickets[i].TicketID == ticketID {
			return &tickets[i], nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
}

// checkAttachmentCap enforces kept-existing + new <= MaxPerTicket before any
// file is removed or written.
func (s *TicketService) checkAttachmentCap(input UpdateInput) error {
	existing, err := s.attachments.List(input.TicketID)
	if err != nil {
		return err
	}

	kept := map[string]bool{}
	for _, name := range existing {
		kept[name] = true
	}
	for _, name := range input.Remove {
		delete(kept, name)
	}
	added := 0
	for _, upload := range input.Add {
		if !kept[upload.Name] {
			added++
		}
	}
	if len(kept)+added > attachments.MaxPerTicket {
		return apperrors.NewCapacityExceeded("attachment limit reached", map[string]any{
			"ticket_id": input.TicketID,
			"kept":      len(kept),
			"adding":    added,
			"limit":     attachments.MaxPerTicket,
		})
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (sub Submission) trimmed() Submission {
	return Submission{
		EmployeeEmail: strings.TrimSpace(sub.EmployeeEmail),
		EmployeeName:  strings.TrimSpace(sub.EmployeeName),
		EmployeeRole:  strings.TrimSpace(sub.EmployeeRole),
		EmployeeID:    strings.TrimSpace(sub.EmployeeID),
		Department:    strings.TrimSpace(sub.Department),
		Concern:       strings.TrimSpace(sub.Concern),
		Description:   strings.TrimSpace(sub.Description),
	}
}

func validateSubmission(sub Submission) error {
	details := map[string]any{}
	required := map[string]string{
		"employee_email": sub.EmployeeEmail,
		"employee_name":  sub.EmployeeName,
		"employee_role":  sub.EmployeeRole,
		"employee_id":    sub.EmployeeID,
		"department":     sub.Department,
		"concern":        sub.Concern,
		"description":    sub.Description,
	}
	for field, value := range required {
		if value == "" {
			details[field] = "required"
		}
	}
	if sub.EmployeeEmail != "" && !strings.Contains(sub.EmployeeEmail, "@") {
		details["employee_email"] = "must contain @"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid submission", details)
	}
	return nil
}

func sortNewestFirst(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt > tickets[j].CreatedAt
	})
}
