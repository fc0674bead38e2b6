package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"cryptolend-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	borrowerID := c.QueryParam("borrower_id")
	if !reHex32.MatchString(borrowerID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid borrower_id"})
	}
	dtos, err := h.uc.ListByBorrower(c.Request().Context(), borrowerID, queryLimit(c, 50, 200))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

// The two-phase early-exit protocol: GET estimates are pure and repeatable,
// POST requests transition the loan and require the risk acknowledgment.

func (h *LoanHandler) EstimateEarlyLiquidation(c echo.Context) error {
	borrowerID := c.QueryParam("borrower_id")
	if !reHex32.MatchString(borrowerID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid borrower_id"})
	}
	est, err := h.uc.EstimateEarlyLiquidation(c.Request().Context(), c.Param("loan_id"), borrowerID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, est)
}

func (h *LoanHandler) EstimateEarlyRepayment(c echo.Context) error {
	borrowerID := c.QueryParam("borrower_id")
	if !reHex32.MatchString(borrowerID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid borrower_id"})
	}
	est, err := h.uc.EstimateEarlyRepayment(c.Request().Context(), c.Param("loan_id"), borrowerID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, est)
}

type exitRequestReq struct {
	BorrowerID       string `json:"borrower_id"       validate:"required,hex32"`
	RiskAcknowledged bool   `json:"risk_acknowledged"`
}

func (h *LoanHandler) RequestEarlyLiquidation(c echo.Context) error {
	return h.requestExit(c, h.uc.RequestEarlyLiquidation)
}

func (h *LoanHandler) RequestEarlyRepayment(c echo.Context) error {
	return h.requestExit(c, h.uc.RequestEarlyRepayment)
}

// MarkDefaulted is the operator surface for delinquent loans; it lives under
// /internal and is not exposed to borrowers or lenders.
func (h *LoanHandler) MarkDefaulted(c echo.Context) error {
	dto, err := h.uc.MarkDefaulted(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) requestExit(c echo.Context, do func(context.Context, loan.ExitRequestInput) (*loan.LoanDTO, error)) error {
	var req exitRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := do(c.Request().Context(), loan.ExitRequestInput{
		LoanID:           c.Param("loan_id"),
		BorrowerID:       req.BorrowerID,
		RiskAcknowledged: req.RiskAcknowledged,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusAccepted, dto)
}
