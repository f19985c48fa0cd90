// Package mlclient talks to the external plate recognition service.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

const (
	defaultTimeout    = 10 * time.Second
	healthTimeout     = 3 * time.Second
	defaultConfidence = 0.85
	maxBodyBytes      = 1 << 20
)

var _ ports.PlateRecognizer = (*Client)(nil)

type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL. A non-positive timeout uses 10s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type detectRequest struct {
	ImageData string `json:"imageData"`
}

type detectResponse struct {
	Success      bool   `json:"success"`
	LicensePlate string `json:"license_plate"`
	Confidence   any    `json:"confidence"`
}

// Recognize posts the image payload to /detect. Any transport failure,
// non-2xx status or undecodable body is returned as an error.
func (c *Client) Recognize(ctx context.Context, imageData string) (*ports.Recognition, error) {
	body, err := json.Marshal(detectRequest{ImageData: imageData})
	if err != nil {
		return nil, fmt.Errorf("encode detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("detect request: unexpected status %d", resp.StatusCode)
	}

	var out detectResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode detect response: %w", err)
	}

	return &ports.Recognition{
		Success:     out.Success,
		PlateNumber: strings.TrimSpace(out.LicensePlate),
		Confidence:  coerceConfidence(out.Confidence),
	}, nil
}

// Healthy reports whether GET /health answers 2xx. Errors count as unhealthy.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// coerceConfidence keeps numeric confidences and defaults everything else.
func coerceConfidence(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return defaultConfidence
}
