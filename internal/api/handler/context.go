package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// ctxClaims extracts the identity injected by the Auth middleware. A missing
// username or role means the middleware did not run; reject with 401.
func ctxClaims(c echo.Context) (username string, role domain.Role, err error) {
	username, _ = c.Get("username").(string)
	r, _ := c.Get("role").(string)
	if username == "" || r == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return username, domain.Role(r), nil
}
