package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// StaffHandler manages the dashboard password gate.
type StaffHandler struct {
	tokens *auth.TokenManager
	staff  config.StaffConfig
}

// NewStaffHandler constructs handler.
func NewStaffHandler(tokens *auth.TokenManager, staff config.StaffConfig) *StaffHandler {
	return &StaffHandler{tokens: tokens, staff: staff}
}

// Login POST /auth/staff/login exchanges the shared dashboard password for a
// session token. With no password configured the dashboard is open and login
// is unnecessary.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	if !h.staff.GateEnabled() {
		return apperrors.NewValidationError("staff dashboard password is not configured", nil)
	}

	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !auth.VerifyDashboardPassword(h.staff.DashboardPassword, req.Password) {
		return apperrors.NewUnauthorized("invalid password")
	}

	token, expiresAt, err := h.tokens.GenerateStaffToken()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.StaffLoginResponse{Token: token, ExpiresAt: expiresAt}})
}
