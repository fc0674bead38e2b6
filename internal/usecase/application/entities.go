package application

import (
	"time"

	domainApp "cryptolend-backend/internal/domain/application"
	"cryptolend-backend/internal/domain/invoice"
)

type CreateApplicationInput struct {
	BorrowerID string `json:"borrower_id"`
	OfferID    string `json:"offer_id"`
	// PrincipalAmount as a human-readable decimal string.
	PrincipalAmount string `json:"principal_amount"`
	TermMonths      int    `json:"term_months"`
}

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

type ApplicationDTO struct {
	ApplicationID string `json:"application_id"`
	BorrowerID    string `json:"borrower_id"`
	OfferID       string `json:"offer_id"`

	PrincipalCurrencyID  string `json:"principal_currency_id"`
	CollateralCurrencyID string `json:"collateral_currency_id"`

	PrincipalAmount         string `json:"principal_amount"`
	CollateralDepositAmount string `json:"collateral_deposit_amount"`
	ProvisionAmount         string `json:"provision_amount"`

	MinLtvRatio string `json:"min_ltv_ratio"`
	MaxLtvRatio string `json:"max_ltv_ratio"`
	TermMonths  int    `json:"term_months"`

	Status       string  `json:"status"`
	CancelReason *string `json:"cancel_reason,omitempty"`

	DepositInvoice *InvoiceDTO `json:"deposit_invoice,omitempty"`

	ApplicationDate time.Time `json:"application_date"`
}

func toDTO(a *domainApp.LoanApplication, inv *invoice.Invoice) *ApplicationDTO {
	dto := &ApplicationDTO{
		ApplicationID:           a.ApplicationID,
		BorrowerID:              a.BorrowerID,
		OfferID:                 a.OfferID,
		PrincipalCurrencyID:     a.PrincipalCurrencyID,
		CollateralCurrencyID:    a.CollateralCurrencyID,
		PrincipalAmount:         a.PrincipalAmount,
		CollateralDepositAmount: a.CollateralDepositAmount,
		ProvisionAmount:         a.ProvisionAmount,
		MinLtvRatio:             a.MinLtvRatio.String(),
		MaxLtvRatio:             a.MaxLtvRatio.String(),
		TermMonths:              a.TermMonths,
		Status:                  string(a.Status),
		CancelReason:            a.CancelReason,
		ApplicationDate:         a.ApplicationDate,
	}
	if inv != nil {
		dto.DepositInvoice = &InvoiceDTO{
			InvoiceID:  inv.InvoiceID,
			Type:       string(inv.Type),
			CurrencyID: inv.CurrencyID,
			Amount:     inv.Amount,
			ExpiresAt:  inv.ExpiresAt,
		}
	}
	return dto
}
