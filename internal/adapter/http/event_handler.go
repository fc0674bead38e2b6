package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"cryptolend-backend/internal/domain/invoice"
	appUC "cryptolend-backend/internal/usecase/application"
	loanUC "cryptolend-backend/internal/usecase/loan"
	offerUC "cryptolend-backend/internal/usecase/offer"
)

// eventDedupeTTL: how long a consumed event id blocks replays. Transitions
// are guard-idempotent anyway; the dedupe just avoids re-running them.
const eventDedupeTTL = 24 * time.Hour

// EventHandler is the webhook intake for the payment and settlement
// collaborators. Events are processed idempotently: duplicate event ids are
// acknowledged without re-processing, and replays past the dedupe window hit
// state guards that no-op.
type EventHandler struct {
	offers *offerUC.Usecase
	apps   *appUC.Usecase
	loans  *loanUC.Usecase
	rdb    *redis.Client
	log    *logrus.Logger
}

func NewEventHandler(offers *offerUC.Usecase, apps *appUC.Usecase, loans *loanUC.Usecase, rdb *redis.Client, log *logrus.Logger) *EventHandler {
	return &EventHandler{offers: offers, apps: apps, loans: loans, rdb: rdb, log: log}
}

type invoicePaidReq struct {
	EventID     string    `json:"event_id"     validate:"required"`
	InvoiceID   string    `json:"invoice_id"   validate:"required,uuid4"`
	InvoiceType string    `json:"invoice_type" validate:"required,oneof=funding collateral_deposit repayment"`
	PaidAmount  string    `json:"paid_amount"  validate:"required"`
	PaidAt      time.Time `json:"paid_at"      validate:"required"`
}

func (h *EventHandler) InvoicePaid(c echo.Context) error {
	var req invoicePaidReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	ctx := c.Request().Context()
	fresh, err := h.claimEvent(ctx, req.EventID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "event store unavailable"})
	}
	if !fresh {
		return c.JSON(http.StatusOK, map[string]any{"status": "duplicate"})
	}

	switch invoice.Type(req.InvoiceType) {
	case invoice.TypeFunding:
		err = h.offers.HandleFundingInvoicePaid(ctx, offerUC.InvoicePaidEvent{
			EventID:    req.EventID,
			InvoiceID:  req.InvoiceID,
			PaidAmount: req.PaidAmount,
			PaidAt:     req.PaidAt,
		})
	case invoice.TypeCollateralDeposit:
		err = h.apps.HandleDepositInvoicePaid(ctx, appUC.InvoicePaidEvent{
			EventID:    req.EventID,
			InvoiceID:  req.InvoiceID,
			PaidAmount: req.PaidAmount,
			PaidAt:     req.PaidAt,
		})
	case invoice.TypeRepayment:
		// Settlement of the repayment invoice arrives via the exit-settled
		// event; a bare invoice-paid notification here is informational.
		h.log.WithField("invoice_id", req.InvoiceID).Info("repayment invoice paid")
	}
	if err != nil {
		// free the id so the collaborator's retry can re-process
		h.releaseEvent(context.Background(), req.EventID)
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "processed"})
}

type loanDisbursedReq struct {
	EventID     string    `json:"event_id"     validate:"required"`
	LoanID      string    `json:"loan_id"      validate:"required,hex32"`
	DisbursedAt time.Time `json:"disbursed_at" validate:"required"`
}

func (h *EventHandler) LoanDisbursed(c echo.Context) error {
	var req loanDisbursedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	ctx := c.Request().Context()
	fresh, err := h.claimEvent(ctx, req.EventID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "event store unavailable"})
	}
	if !fresh {
		return c.JSON(http.StatusOK, map[string]any{"status": "duplicate"})
	}
	if err := h.loans.ActivateOnDisbursement(ctx, req.LoanID, req.DisbursedAt); err != nil {
		h.releaseEvent(context.Background(), req.EventID)
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "processed"})
}

type exitSettledReq struct {
	EventID string `json:"event_id" validate:"required"`
	LoanID  string `json:"loan_id"  validate:"required,hex32"`
	Kind    string `json:"kind"     validate:"required,oneof=liquidation repayment"`
	// SurplusDeficit: signed principal smallest units; liquidation only.
	SurplusDeficit string    `json:"surplus_deficit"`
	SettledAt      time.Time `json:"settled_at" validate:"required"`
}

func (h *EventHandler) ExitSettled(c echo.Context) error {
	var req exitSettledReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	ctx := c.Request().Context()
	fresh, err := h.claimEvent(ctx, req.EventID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "event store unavailable"})
	}
	if !fresh {
		return c.JSON(http.StatusOK, map[string]any{"status": "duplicate"})
	}
	if req.Kind == "liquidation" {
		err = h.loans.SettleEarlyLiquidation(ctx, req.LoanID, req.SurplusDeficit, req.SettledAt)
	} else {
		err = h.loans.SettleEarlyRepayment(ctx, req.LoanID, req.SettledAt)
	}
	if err != nil {
		h.releaseEvent(context.Background(), req.EventID)
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "processed"})
}

func (h *EventHandler) claimEvent(ctx context.Context, eventID string) (bool, error) {
	if h.rdb == nil {
		return true, nil
	}
	return h.rdb.SetNX(ctx, "evt:"+eventID, "1", eventDedupeTTL).Result()
}

func (h *EventHandler) releaseEvent(ctx context.Context, eventID string) {
	if h.rdb == nil {
		return
	}
	if err := h.rdb.Del(ctx, "evt:"+eventID).Err(); err != nil {
		h.log.WithError(err).WithField("event_id", eventID).Warn("release event id")
	}
}
