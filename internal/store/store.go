// Package store persists the ticket table.
//
// The default backend is a flat CSV file matching the original table layout;
// a Postgres backend implements the same contract behind the TicketStore
// interface so the service layer stays unaware of the swap.
package store

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// FilterAll disables a status or employee_id criterion.
const FilterAll = "All"

// FilterOptions compose with logical AND. Zero values (and FilterAll for
// status/employee_id) disable a criterion.
type FilterOptions struct {
	// Status matches exactly.
	Status string
	// Department matches as a case-insensitive substring.
	Department string
	// EmployeeID matches exactly.
	EmployeeID string
	// Email matches employee_email exactly.
	Email string
}

// Match reports whether t satisfies every active criterion.
func (f FilterOptions) Match(t domain.Ticket) bool {
	if f.Status != "" && f.Status != FilterAll && string(t.Status) != f.Status {
		return false
	}
	if f.Department != "" && !strings.Contains(strings.ToLower(t.Department), strings.ToLower(f.Department)) {
		return false
	}
	if f.EmployeeID != "" && f.EmployeeID != FilterAll && t.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Email != "" && t.EmployeeEmail != f.Email {
		return false
	}
	return true
}

// FieldUpdates lists the mutable ticket columns. Nil fields are left
// untouched; every other column is immutable after creation.
type FieldUpdates struct {
	Status        *domain.TicketStatus
	ClosedAt      *string
	LastUpdatedBy *string
}

func (u FieldUpdates) apply(t *domain.Ticket) {
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.ClosedAt != nil {
		t.ClosedAt = *u.ClosedAt
	}
	if u.LastUpdatedBy != nil {
		t.LastUpdatedBy = *u.LastUpdatedBy
	}
}

// TicketStore encapsulates ticket table persistence.
type TicketStore interface {
	// Load returns the full table. A missing backing file is an empty
	// table, not an error.
	Load(ctx context.Context) ([]domain.Ticket, error)
	// Save overwrites the entire table, preserving column order.
	Save(ctx context.Context, tickets []domain.Ticket) error
	// Append adds one ticket to the end of the table.
	Append(ctx context.Context, ticket domain.Ticket) error
	// UpdateFields applies updates to the first row matching ticketID and
	// returns the updated ticket. An unknown id fails with NOT_FOUND
	// before any write.
	UpdateFields(ctx context.Context, ticketID string, updates FieldUpdates) (*domain.Ticket, error)
	// Filter returns the rows satisfying opts, in table order.
	Filter(ctx context.Context, opts FilterOptions) ([]domain.Ticket, error)
}
