package handler

import (
	"time"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// --- Auth ---

type registerRequest struct {
	Username string `json:"username"  validate:"required,min=3,max=50"`
	Email    string `json:"email"     validate:"required,email,max=100"`
	Password string `json:"password"  validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"max=100"`
	Role     string `json:"role"      validate:"omitempty,role"`
}

type loginRequest struct {
	// Username accepts either a username or an email address.
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string      `json:"token"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// --- Detection ---

type detectRequest struct {
	ImageData string `json:"image_data" validate:"required"`
}

type detectResponse struct {
	DetectionID string               `json:"detection_id"`
	PlateNumber string               `json:"license_plate_number"`
	Confidence  float64              `json:"confidence"`
	Mode        domain.DetectionMode `json:"mode"`
}

type mlHealthResponse struct {
	Healthy bool `json:"healthy"`
}

// --- Fines ---

type createFineRequest struct {
	PlateNumber   string     `json:"license_plate_number" validate:"required,max=20"`
	Amount        float64    `json:"amount"               validate:"required,gt=0"`
	ViolationType string     `json:"violation_type"       validate:"required,max=100"`
	Description   string     `json:"description"          validate:"max=500"`
	ViolationDate *time.Time `json:"violation_date"`
}

type payFineRequest struct {
	PlateNumber string `json:"license_plate_number" validate:"required,max=20"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=UNPAID PAID"`
}
