package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{Token: r.Token, Username: r.Username, Role: r.Role, ExpiresAt: r.ExpiresAt}
}

// Register creates a new user account and returns a token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  apiResponse{data=authResponse}
// @Failure      400   {object}  apiResponse
// @Failure      429   {object}  apiResponse
// @Failure      500   {object}  apiResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if msg := bind(c, &req); msg != "" {
		return respondFailure(c, http.StatusBadRequest, msg)
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, "registering user", err)
	}

	return respondOK(c, "User registered successfully", toAuthResponse(res))
}

// Login authenticates by username or email and returns a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  apiResponse{data=authResponse}
// @Failure      400   {object}  apiResponse
// @Failure      429   {object}  apiResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if msg := bind(c, &req); msg != "" {
		return respondFailure(c, http.StatusBadRequest, msg)
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, "logging in", err)
	}

	return respondOK(c, "Login successful", toAuthResponse(res))
}
