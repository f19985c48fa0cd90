package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

// FineHandler handles HTTP requests for the fine lifecycle.
type FineHandler struct {
	service ports.FineService
}

func NewFineHandler(service ports.FineService) *FineHandler {
	return &FineHandler{service: service}
}

// Create handles POST /api/fines. The caller is recorded as issuer.
//
// @Summary      Issue a fine
// @Tags         fines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createFineRequest  true  "Fine details"
// @Success      200   {object}  apiResponse{data=domain.Fine}
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      403   {object}  apiResponse
// @Failure      500   {object}  apiResponse
// @Router       /api/fines [post]
func (h *FineHandler) Create(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createFineRequest
	if msg := bind(c, &req); msg != "" {
		return respondFailure(c, http.StatusBadRequest, msg)
	}

	in := ports.CreateFineInput{
		PlateNumber:    strings.TrimSpace(req.PlateNumber),
		Amount:         req.Amount,
		ViolationType:  req.ViolationType,
		Description:    req.Description,
		IssuerUsername: username,
	}
	if req.ViolationDate != nil {
		in.ViolationDate = req.ViolationDate.UTC()
	}

	fine, err := h.service.CreateFine(c.Request().Context(), in)
	if err != nil {
		return respondError(c, "creating fine", err)
	}
	return respondOK(c, "Fine issued", fine)
}

// Check handles GET /api/fines/check?licensePlateNumber=&status=.
//
// @Summary      Check the fines of a plate
// @Tags         fines
// @Produce      json
// @Security     BearerAuth
// @Param        licensePlateNumber  query     string  true   "Plate number"
// @Param        status              query     string  false  "UNPAID to list only unpaid fines"
// @Success      200                 {object}  apiResponse{data=[]domain.Fine}
// @Failure      400                 {object}  apiResponse
// @Failure      401                 {object}  apiResponse
// @Failure      500                 {object}  apiResponse
// @Router       /api/fines/check [get]
func (h *FineHandler) Check(c echo.Context) error {
	plate := strings.TrimSpace(c.QueryParam("licensePlateNumber"))
	if plate == "" {
		return respondFailure(c, http.StatusBadRequest, "License plate number is required")
	}

	var (
		fines []*domain.Fine
		err   error
	)
	switch status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); status {
	case "":
		fines, err = h.service.GetFinesByPlate(c.Request().Context(), plate)
	case string(domain.FineUnpaid):
		fines, err = h.service.GetUnpaidFinesByPlate(c.Request().Context(), plate)
	default:
		return respondFailure(c, http.StatusBadRequest, "status filter must be UNPAID")
	}
	if err != nil {
		return respondError(c, "checking fines", err)
	}
	return respondOK(c, "", fines)
}

// List handles GET /api/fines.
//
// @Summary      List all fines
// @Tags         fines
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse{data=[]domain.Fine}
// @Failure      401  {object}  apiResponse
// @Failure      403  {object}  apiResponse
// @Failure      500  {object}  apiResponse
// @Router       /api/fines [get]
func (h *FineHandler) List(c echo.Context) error {
	fines, err := h.service.GetAllFines(c.Request().Context())
	if err != nil {
		return respondError(c, "getting fines", err)
	}
	return respondOK(c, "", fines)
}

// Search handles GET /api/fines/search?q=.
//
// @Summary      Search fines by partial plate
// @Tags         fines
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  true  "Case-insensitive plate fragment"
// @Success      200  {object}  apiResponse{data=[]domain.Fine}
// @Failure      400  {object}  apiResponse
// @Failure      403  {object}  apiResponse
// @Router       /api/fines/search [get]
func (h *FineHandler) Search(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return respondFailure(c, http.StatusBadRequest, "search term is required")
	}

	fines, err := h.service.SearchByPlate(c.Request().Context(), term)
	if err != nil {
		return respondError(c, "searching fines", err)
	}
	return respondOK(c, "", fines)
}

// Pay handles POST /api/fines/pay/:id.
//
// @Summary      Pay a fine
// @Tags         fines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Fine id"
// @Param        body  body      payFineRequest  true  "Plate the fine was issued to"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      500   {object}  apiResponse
// @Router       /api/fines/pay/{id} [post]
func (h *FineHandler) Pay(c echo.Context) error {
	id, ok := fineID(c)
	if !ok {
		return respondFailure(c, http.StatusBadRequest, "invalid fine id")
	}

	var req payFineRequest
	if msg := bind(c, &req); msg != "" {
		return respondFailure(c, http.StatusBadRequest, msg)
	}

	paid, err := h.service.PayFine(c.Request().Context(), id, strings.TrimSpace(req.PlateNumber))
	if err != nil {
		return respondError(c, "paying fine", err)
	}
	if !paid {
		return respondFailure(c, http.StatusOK, "Fine not found or already paid")
	}
	return respondOK(c, "Fine paid successfully", nil)
}

// UpdateStatus handles PUT /api/fines/:id/status.
//
// @Summary      Update the status of a fine
// @Tags         fines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Fine id"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  apiResponse{data=domain.Fine}
// @Failure      400   {object}  apiResponse
// @Failure      403   {object}  apiResponse
// @Failure      500   {object}  apiResponse
// @Router       /api/fines/{id}/status [put]
func (h *FineHandler) UpdateStatus(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	id, ok := fineID(c)
	if !ok {
		return respondFailure(c, http.StatusBadRequest, "invalid fine id")
	}

	var req updateStatusRequest
	if msg := bind(c, &req); msg != "" {
		return respondFailure(c, http.StatusBadRequest, msg)
	}

	fine, err := h.service.UpdateStatus(c.Request().Context(), id, domain.FineStatus(req.Status), username)
	if err != nil {
		return respondError(c, "updating fine status", err)
	}
	return respondOK(c, "Fine status updated", fine)
}

// Stats handles GET /api/fines/stats.
//
// @Summary      Fine statistics
// @Tags         fines
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse{data=domain.FineStats}
// @Failure      403  {object}  apiResponse
// @Failure      500  {object}  apiResponse
// @Router       /api/fines/stats [get]
func (h *FineHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, "getting statistics", err)
	}
	return respondOK(c, "", stats)
}

func fineID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
