package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

func handle(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	code, body := handle(t, echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"))

	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, body.Success)
	assert.Equal(t, "rate limit exceeded", body.Message)
}

func TestHTTPErrorHandler_InternalKeepsOperationMessage(t *testing.T) {
	err := echo.NewHTTPError(http.StatusInternalServerError, "Error paying fine: db down").SetInternal(errors.New("db down"))
	code, body := handle(t, err)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Error paying fine: db down", body.Message)
}

func TestHTTPErrorHandler_DomainAndUnknown(t *testing.T) {
	code, _ := handle(t, domain.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := handle(t, domain.ErrFineNotFound)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, body.Success)

	code, body = handle(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body.Message)
}
