package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/config"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func newGateApp(t *testing.T, gate *StaffGate) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/staff/tickets", gate.Handle, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestStaffGateOpenWithoutPassword(t *testing.T) {
	gate := NewStaffGate(NewTokenManager("test-secret", 60), config.StaffConfig{})
	app := newGateApp(t, gate)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staff/tickets", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaffGateRequiresToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	gate := NewStaffGate(tm, config.StaffConfig{DashboardPassword: "s3cret"})
	app := newGateApp(t, gate)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staff/tickets", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/staff/tickets", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, _, err := tm.GenerateStaffToken()
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/staff/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
