package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "Open"
	TicketStatusClosed TicketStatus = "Closed"
)

// ValidStatus reports whether s is a persistable status value.
func ValidStatus(s TicketStatus) bool {
	return s == TicketStatusOpen || s == TicketStatusClosed
}

// TimestampLayout is the text layout for created_at and closed_at columns.
// Seconds precision, no zone; values round-trip through the table unchanged.
const TimestampLayout = "2006-01-02T15:04:05"

// Timestamp formats t for storage in the ticket table.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Ticket is one row of the persisted table. Every value is stored as text;
// ClosedAt stays empty until the ticket is closed.
type Ticket struct {
	TicketID      string       `json:"ticket_id"`
	EmployeeEmail string       `json:"employee_email"`
	EmployeeName  string       `json:"employee_name"`
	EmployeeRole  string       `json:"employee_role"`
	EmployeeID    string       `json:"employee_id"`
	Department    string       `json:"department"`
	Concern       string       `json:"concern"`
	Description   string       `json:"description"`
	Status        TicketStatus `json:"status"`
	CreatedAt     string       `json:"created_at"`
	ClosedAt      string       `json:"closed_at"`
	LastUpdatedBy string       `json:"last_updated_by"`
}

// Columns returns the canonical header of the ticket table, in persisted order.
func Columns() []string {
	return []string{
		"ticket_id",
		"employee_email",
		"employee_name",
		"employee_role",
		"employee_id",
		"department",
		"concern",
		"description",
		"status",
		"created_at",
		"closed_at",
		"last_updated_by",
	}
}

// Record returns the ticket as a row in Columns order.
func (t Ticket) Record() []string {
	return []string{
		t.TicketID,
		t.EmployeeEmail,
		t.EmployeeName,
		t.EmployeeRole,
		t.EmployeeID,
		t.Department,
		t.Concern,
		t.Description,
		string(t.Status),
		t.CreatedAt,
		t.ClosedAt,
		t.LastUpdatedBy,
	}
}

// FromRecord builds a Ticket from a row in Columns order. The caller is
// responsible for the row having the canonical width.
func FromRecord(rec []string) Ticket {
	return Ticket{
		TicketID:      rec[0],
		EmployeeEmail: rec[1],
		EmployeeName:  rec[2],
		EmployeeRole:  rec[3],
		EmployeeID:    rec[4],
		Department:    rec[5],
		Concern:       rec[6],
		Description:   rec[7],
		Status:        TicketStatus(rec[8]),
		CreatedAt:     rec[9],
		ClosedAt:      rec[10],
		LastUpdatedBy: rec[11],
	}
}
