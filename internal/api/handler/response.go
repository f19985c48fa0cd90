package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// apiResponse is the envelope returned by every endpoint. Domain failures
// are reported with success=false and HTTP 200.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, apiResponse{Success: true, Message: message, Data: data})
}

func respondFailure(c echo.Context, status int, message string) error {
	return c.JSON(status, apiResponse{Success: false, Message: message})
}

// domainMessages holds the caller-facing text of expected domain failures.
var domainMessages = []struct {
	err error
	msg string
}{
	{domain.ErrUsernameTaken, "Username already exists"},
	{domain.ErrEmailTaken, "Email already exists"},
	{domain.ErrInvalidAuthorityDomain, "Government authorities must use an institutional email address"},
	{domain.ErrInvalidCredentials, "Invalid username/email or password"},
	{domain.ErrInvalidRole, "Role must be CITIZEN or AUTHORITY"},
	{domain.ErrFineNotFound, "Fine not found"},
	{domain.ErrInvalidTransition, "A paid fine cannot be changed back to unpaid"},
	{domain.ErrInvalidStatus, "Status must be UNPAID or PAID"},
	{domain.ErrInvalidAmount, "Fine amount must be greater than zero"},
}

// respondError renders expected domain failures as success=false at 200.
// Anything else becomes a 500 naming the failed operation; the global error
// handler logs the cause and renders the envelope.
func respondError(c echo.Context, op string, err error) error {
	for _, dm := range domainMessages {
		if errors.Is(err, dm.err) {
			return respondFailure(c, http.StatusOK, dm.msg)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Error %s: %v", op, err)).SetInternal(err)
}

// bind decodes and validates the body into req. It returns the message for
// a 400 response, or "" when req is usable.
func bind(c echo.Context, req any) string {
	if err := c.Bind(req); err != nil {
		return "invalid payload"
	}
	if err := c.Validate(req); err != nil {
		return err.Error()
	}
	return ""
}
