package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// errorResponse is the failure form of the API envelope.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders echo errors (bind failures, 401/403/429 from middleware, router 404) with their own code.
//   - Maps domain errors that escaped a handler to their usual status.
//   - Logs server errors with their internal cause.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logError(log, c, he.Internal, he.Code)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrFineNotFound):
		return http.StatusOK, "Fine not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusOK, "Invalid username/email or password"
	}

	logError(log, c, err, http.StatusInternalServerError)
	return http.StatusInternalServerError, "internal server error"
}

func logError(log zerolog.Logger, c echo.Context, cause error, code int) {
	log.Error().
		Err(cause).
		Int("status", code).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("request failed")
}
