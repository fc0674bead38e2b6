package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cryptolend-backend/internal/usecase/application"
)

type ApplicationHandler struct{ uc *application.Usecase }

func NewApplicationHandler(uc *application.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type createApplicationReq struct {
	BorrowerID      string `json:"borrower_id"      validate:"required,hex32"`
	OfferID         string `json:"offer_id"         validate:"required,hex32"`
	PrincipalAmount string `json:"principal_amount" validate:"required,decstr"`
	TermMonths      int    `json:"term_months"      validate:"required,gte=1,lte=60"`
}

func (h *ApplicationHandler) CreateApplication(c echo.Context) error {
	var req createApplicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Create(c.Request().Context(), application.CreateApplicationInput{
		BorrowerID:      req.BorrowerID,
		OfferID:         req.OfferID,
		PrincipalAmount: req.PrincipalAmount,
		TermMonths:      req.TermMonths,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type cancelApplicationReq struct {
	BorrowerID string `json:"borrower_id" validate:"required,hex32"`
	Reason     string `json:"reason"      validate:"required,max=255"`
}

func (h *ApplicationHandler) CancelApplication(c echo.Context) error {
	var req cancelApplicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("application_id"), req.BorrowerID, req.Reason)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) ListApplications(c echo.Context) error {
	borrowerID := c.QueryParam("borrower_id")
	if !reHex32.MatchString(borrowerID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid borrower_id"})
	}
	dtos, err := h.uc.List(c.Request().Context(), borrowerID, c.QueryParam("status"), queryLimit(c, 50, 200))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}
