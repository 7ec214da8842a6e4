package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/store"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// StaffTicketsHandler manages the staff dashboard endpoints.
type StaffTicketsHandler struct {
	service *service.TicketService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService) *StaffTicketsHandler {
	return &StaffTicketsHandler{service: ticketService}
}

// ListTickets GET /staff/tickets with status/department/employee_id filters.
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.UserContext(), parseFilterQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// UpdateTicket PUT /staff/tickets/:id applies a status change, optional
// note, attachment removals, and file uploads. Accepts multipart form data
// (with uploads) or plain JSON.
func (h *StaffTicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	input, err := parseUpdateRequest(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Update(c.UserContext(), *input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(*ticket)})
}

// ListAttachments GET /staff/tickets/:id/attachments.
func (h *StaffTicketsHandler) ListAttachments(c *fiber.Ctx) error {
	names, err := h.service.Attachments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": names})
}

// DeleteAttachment DELETE /staff/tickets/:id/attachments/:name.
func (h *StaffTicketsHandler) DeleteAttachment(c *fiber.Ctx) error {
	if err := h.service.RemoveAttachment(c.UserContext(), c.Params("id"), c.Params("name")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": "deleted"})
}

// Summary GET /staff/summary returns counts and the per-concern breakdown
// for the current filter selection.
func (h *StaffTicketsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summarize(c.UserContext(), parseFilterQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

func parseFilterQuery(c *fiber.Ctx) store.FilterOptions {
	return store.FilterOptions{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		EmployeeID: c.Query("employee_id"),
	}
}

func parseUpdateRequest(c *fiber.Ctx) (*service.UpdateInput, error) {
	input := service.UpdateInput{TicketID: c.Params("id")}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, apperrors.NewValidationError("invalid multipart form", nil)
		}
		input.NewStatus = domain.TicketStatus(firstValue(form.Value["status"]))
		input.Note = firstValue(form.Value["note"])
		input.Remove = form.Value["remove"]
		for _, fileHeader := range form.File["files"] {
			f, err := fileHeader.Open()
			if err != nil {
				return nil, apperrors.NewIOError("read uploaded file", err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, apperrors.NewIOError("read uploaded file", err)
			}
			input.Add = append(input.Add, service.FileUpload{Name: fileHeader.Filename, Data: data})
		}
		return &input, nil
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	input.NewStatus = domain.TicketStatus(req.Status)
	input.Note = req.Note
	input.Remove = req.Remove
	return &input, nil
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
