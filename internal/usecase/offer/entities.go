package offer

import (
	"time"

	"cryptolend-backend/internal/calc"
	"cryptolend-backend/internal/domain/invoice"
	domainOffer "cryptolend-backend/internal/domain/offer"
)

type CreateOfferInput struct {
	LenderID string `json:"lender_id"`

	PrincipalBlockchain  string `json:"principal_blockchain"`
	PrincipalTokenID     string `json:"principal_token_id"`
	CollateralBlockchain string `json:"collateral_blockchain"`
	CollateralTokenID    string `json:"collateral_token_id"`

	// Human-readable decimal strings; converted against the currency's
	// decimals before persistence.
	OfferedAmount string `json:"offered_amount"`
	MinLoanAmount string `json:"min_loan_amount,omitempty"`
	MaxLoanAmount string `json:"max_loan_amount,omitempty"`

	InterestRate string `json:"interest_rate"`
	// TermOptions: allowed month counts, comma-separated.
	TermOptions string `json:"term_options"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// InvoicePaidEvent is the payment collaborator's notification payload.
type InvoicePaidEvent struct {
	EventID    string    `json:"event_id"`
	InvoiceID  string    `json:"invoice_id"`
	PaidAmount string    `json:"paid_amount"`
	PaidAt     time.Time `json:"paid_at"`
}

type InvoiceDTO struct {
	InvoiceID  string    `json:"invoice_id"`
	Type       string    `json:"type"`
	CurrencyID string    `json:"currency_id"`
	Amount     string    `json:"amount"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RequirementDTO mirrors the calculator output for audit purposes.
type RequirementDTO struct {
	RequiredCollateralAmount string    `json:"required_collateral_amount"`
	ProvisionAmount          string    `json:"provision_amount"`
	MinLtvRatio              string    `json:"min_ltv_ratio"`
	MaxLtvRatio              string    `json:"max_ltv_ratio"`
	AppliedRate              string    `json:"applied_rate"`
	RateID                   string    `json:"rate_id"`
	RateDate                 time.Time `json:"rate_date"`
	ExpirationDate           time.Time `json:"expiration_date"`
}

type OfferDTO struct {
	OfferID  string `json:"offer_id"`
	LenderID string `json:"lender_id"`

	PrincipalCurrencyID  string `json:"principal_currency_id"`
	CollateralCurrencyID string `json:"collateral_currency_id"`

	OfferedAmount   string `json:"offered_amount"`
	AvailableAmount string `json:"available_amount"`
	MinLoanAmount   string `json:"min_loan_amount"`
	MaxLoanAmount   string `json:"max_loan_amount"`

	InterestRate string `json:"interest_rate"`
	TermOptions  string `json:"term_options"`

	// Status is the external view: expired presents as closed.
	Status      string  `json:"status"`
	CloseReason *string `json:"close_reason,omitempty"`

	FundingInvoice *InvoiceDTO     `json:"funding_invoice,omitempty"`
	Requirement    *RequirementDTO `json:"requirement,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func toDTO(o *domainOffer.LoanOffer, inv *invoice.Invoice, req *calc.RequirementResult) *OfferDTO {
	dto := &OfferDTO{
		OfferID:              o.OfferID,
		LenderID:             o.LenderID,
		PrincipalCurrencyID:  o.PrincipalCurrencyID,
		CollateralCurrencyID: o.CollateralCurrencyID,
		OfferedAmount:        o.OfferedAmount,
		AvailableAmount:      o.AvailableAmount,
		MinLoanAmount:        o.MinLoanAmount,
		MaxLoanAmount:        o.MaxLoanAmount,
		InterestRate:         o.InterestRate.String(),
		TermOptions:          o.TermOptions,
		Status:               string(o.Status.External()),
		CloseReason:          o.CloseReason,
		ExpiresAt:            o.ExpiresAt,
		CreatedAt:            o.CreatedAt,
	}
	if inv != nil {
		dto.FundingInvoice = &InvoiceDTO{
			InvoiceID:  inv.InvoiceID,
			Type:       string(inv.Type),
			CurrencyID: inv.CurrencyID,
			Amount:     inv.Amount,
			ExpiresAt:  inv.ExpiresAt,
		}
	}
	if req != nil {
		dto.Requirement = &RequirementDTO{
			RequiredCollateralAmount: req.RequiredCollateralAmount,
			ProvisionAmount:          req.ProvisionAmount,
			MinLtvRatio:              req.MinLtvRatio.String(),
			MaxLtvRatio:              req.MaxLtvRatio.String(),
			AppliedRate:              req.AppliedRate.String(),
			RateID:                   req.RateID,
			RateDate:                 req.RateDate,
			ExpirationDate:           req.ExpirationDate,
		}
	}
	return dto
}
