package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

// DetectionHandler exposes plate detection.
type DetectionHandler struct {
	service ports.DetectionService
}

func NewDetectionHandler(service ports.DetectionService) *DetectionHandler {
	return &DetectionHandler{service: service}
}

// Detect handles POST /api/detect. The response is always successful; the
// message tells whether the plate came from the model or from mock data.
//
// @Summary      Detect a license plate
// @Tags         detection
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      detectRequest  true  "Base64 image payload"
// @Success      200   {object}  apiResponse{data=detectResponse}
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      429   {object}  apiResponse
// @Router       /api/detect [post]
func (h *DetectionHandler) Detect(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req detectRequest
	if msg := bind(c, &req); msg != "" {
		return respondFailure(c, http.StatusBadRequest, msg)
	}

	d := h.service.Detect(c.Request().Context(), ports.DetectInput{
		ImageData: req.ImageData,
		Username:  username,
	})
	return respondOK(c, d.Message, detectResponse{
		DetectionID: d.ID,
		PlateNumber: d.PlateNumber,
		Confidence:  d.Confidence,
		Mode:        d.Mode,
	})
}

// History handles GET /api/detections?limit=.
//
// @Summary      Detection history of the caller
// @Tags         detection
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum entries (default 50, max 200)"
// @Success      200    {object}  apiResponse{data=[]domain.Detection}
// @Failure      400    {object}  apiResponse
// @Failure      401    {object}  apiResponse
// @Failure      500    {object}  apiResponse
// @Router       /api/detections [get]
func (h *DetectionHandler) History(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var limit int64
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			return respondFailure(c, http.StatusBadRequest, "limit must be a positive integer")
		}
	}

	history, err := h.service.History(c.Request().Context(), username, limit)
	if err != nil {
		return respondError(c, "getting detection history", err)
	}
	return respondOK(c, "", history)
}

// MLHealth handles GET /api/detect/health.
//
// @Summary      Recognition service health
// @Tags         detection
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse{data=mlHealthResponse}
// @Router       /api/detect/health [get]
func (h *DetectionHandler) MLHealth(c echo.Context) error {
	healthy := h.service.RecognizerHealthy(c.Request().Context())
	msg := "ML service is available"
	if !healthy {
		msg = "ML service unavailable, detections use mock data"
	}
	return respondOK(c, msg, mlHealthResponse{Healthy: healthy})
}
