package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cryptolend-backend/internal/usecase/offer"
)

type OfferHandler struct{ uc *offer.Usecase }

func NewOfferHandler(uc *offer.Usecase) *OfferHandler { return &OfferHandler{uc: uc} }

type createOfferReq struct {
	LenderID string `json:"lender_id" validate:"required,hex32"`

	PrincipalBlockchain  string `json:"principal_blockchain"  validate:"required"`
	PrincipalTokenID     string `json:"principal_token_id"    validate:"required"`
	CollateralBlockchain string `json:"collateral_blockchain" validate:"required"`
	CollateralTokenID    string `json:"collateral_token_id"   validate:"required"`

	OfferedAmount string `json:"offered_amount" validate:"required,decstr"`
	MinLoanAmount string `json:"min_loan_amount" validate:"omitempty,decstr"`
	MaxLoanAmount string `json:"max_loan_amount" validate:"omitempty,decstr"`

	InterestRate string `json:"interest_rate" validate:"required,rate"`
	TermOptions  string `json:"term_options"  validate:"required,terms"`

	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *OfferHandler) CreateOffer(c echo.Context) error {
	var req createOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Create(c.Request().Context(), offer.CreateOfferInput{
		LenderID:             req.LenderID,
		PrincipalBlockchain:  req.PrincipalBlockchain,
		PrincipalTokenID:     req.PrincipalTokenID,
		CollateralBlockchain: req.CollateralBlockchain,
		CollateralTokenID:    req.CollateralTokenID,
		OfferedAmount:        req.OfferedAmount,
		MinLoanAmount:        req.MinLoanAmount,
		MaxLoanAmount:        req.MaxLoanAmount,
		InterestRate:         req.InterestRate,
		TermOptions:          req.TermOptions,
		ExpiresAt:            req.ExpiresAt,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *OfferHandler) GetOffer(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("offer_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *OfferHandler) ListOffers(c echo.Context) error {
	dtos, err := h.uc.ListPublished(c.Request().Context(), queryLimit(c, 50, 200))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

type closeOfferReq struct {
	LenderID string `json:"lender_id" validate:"required,hex32"`
	Reason   string `json:"reason"    validate:"omitempty,max=255"`
}

func (h *OfferHandler) CloseOffer(c echo.Context) error {
	var req closeOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Close(c.Request().Context(), c.Param("offer_id"), req.LenderID, req.Reason)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
