package loan

import (
	"time"

	domainLoan "cryptolend-backend/internal/domain/loan"
)

// ExitRequestInput is the side-effecting half of the two-phase early-exit
// protocol. RiskAcknowledged must be set or the request is rejected.
type ExitRequestInput struct {
	LoanID           string `json:"-"`
	BorrowerID       string `json:"borrower_id"`
	RiskAcknowledged bool   `json:"risk_acknowledged"`
}

type LoanDTO struct {
	LoanID        string `json:"loan_id"`
	OfferID       string `json:"offer_id"`
	ApplicationID string `json:"application_id"`
	LenderID      string `json:"lender_id"`
	BorrowerID    string `json:"borrower_id"`

	PrincipalCurrencyID  string `json:"principal_currency_id"`
	CollateralCurrencyID string `json:"collateral_currency_id"`

	PrincipalAmount string `json:"principal_amount"`
	InterestRate    string `json:"interest_rate"`
	TermMonths      int    `json:"term_months"`

	InterestAmount         string `json:"interest_amount"`
	ProvisionAmount        string `json:"provision_amount"`
	LiquidationFee         string `json:"liquidation_fee"`
	RepaymentTotal         string `json:"repayment_total"`
	RedeliveryFee          string `json:"redelivery_fee"`
	RedeliveryAmount       string `json:"redelivery_amount"`
	MinCollateralValuation string `json:"min_collateral_valuation"`

	CollateralAmount string `json:"collateral_amount"`
	LtvRatio         string `json:"ltv_ratio"`
	MarginCallLtv    string `json:"margin_call_ltv"`

	OriginationDate time.Time `json:"origination_date"`
	MaturityDate    time.Time `json:"maturity_date"`

	Status string `json:"status"`

	ExitRequestedAt       *time.Time `json:"exit_requested_at,omitempty"`
	SettledAt             *time.Time `json:"settled_at,omitempty"`
	SettledSurplusDeficit *string    `json:"settled_surplus_deficit,omitempty"`
}

func toDTO(l *domainLoan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:                 l.LoanID,
		OfferID:                l.OfferID,
		ApplicationID:          l.ApplicationID,
		LenderID:               l.LenderID,
		BorrowerID:             l.BorrowerID,
		PrincipalCurrencyID:    l.PrincipalCurrencyID,
		CollateralCurrencyID:   l.CollateralCurrencyID,
		PrincipalAmount:        l.PrincipalAmount,
		InterestRate:           l.InterestRate.String(),
		TermMonths:             l.TermMonths,
		InterestAmount:         l.InterestAmount,
		ProvisionAmount:        l.ProvisionAmount,
		LiquidationFee:         l.LiquidationFee,
		RepaymentTotal:         l.RepaymentTotal,
		RedeliveryFee:          l.RedeliveryFee,
		RedeliveryAmount:       l.RedeliveryAmount,
		MinCollateralValuation: l.MinCollateralValuation,
		CollateralAmount:       l.CollateralAmount,
		LtvRatio:               l.LtvRatio.String(),
		MarginCallLtv:          l.MarginCallLtv.String(),
		OriginationDate:        l.OriginationDate,
		MaturityDate:           l.MaturityDate,
		Status:                 string(l.Status),
		ExitRequestedAt:        l.ExitRequestedAt,
		SettledAt:              l.SettledAt,
		SettledSurplusDeficit:  l.SettledSurplusDeficit,
	}
}
