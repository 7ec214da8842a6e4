package dto

import (
	"github.com/spec-kit/helpdesk/internal/domain"
)

// SubmitTicketRequest carries the seven intake fields.
type SubmitTicketRequest struct {
	EmployeeEmail string `json:"employee_email"`
	EmployeeName  string `json:"employee_name"`
	EmployeeRole  string `json:"employee_role"`
	EmployeeID    string `json:"employee_id"`
	Department    string `json:"department"`
	Concern       string `json:"concern"`
	Description   string `json:"description"`
}

// UpdateTicketRequest is the JSON form of a staff update. Multipart requests
// carry the same fields plus file uploads.
type UpdateTicketRequest struct {
	Status string   `json:"status"`
	Note   string   `json:"note"`
	Remove []string `json:"remove"`
}

// TicketResponse mirrors one row of the ticket table.
type TicketResponse struct {
	TicketID      string `json:"ticket_id"`
	EmployeeEmail string `json:"employee_email"`
	EmployeeName  string `json:"employee_name"`
	EmployeeRole  string `json:"employee_role"`
	EmployeeID    string `json:"employee_id"`
	Department    string `json:"department"`
	Concern       string `json:"concern"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	ClosedAt      string `json:"closed_at"`
	LastUpdatedBy string `json:"last_updated_by"`
}

// FromTicket maps a domain ticket to its response shape.
func FromTicket(t domain.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:      t.TicketID,
		EmployeeEmail: t.EmployeeEmail,
		EmployeeName:  t.EmployeeName,
		EmployeeRole:  t.EmployeeRole,
		EmployeeID:    t.EmployeeID,
		Department:    t.Department,
		Concern:       t.Concern,
		Description:   t.Description,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
		ClosedAt:      t.ClosedAt,
		LastUpdatedBy: t.LastUpdatedBy,
	}
}

// FromTickets maps a slice of domain tickets.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, FromTicket(t))
	}
	return items
}
