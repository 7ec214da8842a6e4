package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/config"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// StaffGate protects the staff dashboard routes. When no dashboard password
// is configured the gate is open, matching the original tool's behavior.
type StaffGate struct {
	tokens *TokenManager
	staff  config.StaffConfig
}

// NewStaffGate constructs the middleware.
func NewStaffGate(tokens *TokenManager, staff config.StaffConfig) *StaffGate {
	return &StaffGate{tokens: tokens, staff: staff}
}

// Handle enforces a valid staff token on protected routes.
func (g *StaffGate) Handle(c *fiber.Ctx) error {
	if !g.staff.GateEnabled() {
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}
	if err := g.tokens.ParseStaffToken(parts[1]); err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	return c.Next()
}
