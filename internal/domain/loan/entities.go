package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cryptolend-backend/internal/domain/fault"
)

type Status string

const (
	// StatusDraft: originated and scheduled, waiting for disbursement settlement.
	StatusDraft Status = "draft"
	// StatusActive: principal disbursed, loan running.
	StatusActive Status = "active"
	// Pending sub-states: an early-exit request was accepted; the settlement
	// collaborator drives the terminal transition.
	StatusPendingEarlyLiquidation Status = "pending_early_liquidation"
	StatusPendingEarlyRepayment   Status = "pending_early_repayment"

	StatusMatured         Status = "matured"
	StatusEarlyLiquidated Status = "early_liquidated"
	StatusEarlyRepaid     Status = "early_repaid"
	StatusDefaulted       Status = "defaulted"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusMatured, StatusEarlyLiquidated, StatusEarlyRepaid, StatusDefaulted:
		return true
	}
	return false
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusActive
	case StatusActive:
		return to == StatusMatured || to == StatusDefaulted ||
			to == StatusPendingEarlyLiquidation || to == StatusPendingEarlyRepayment
	case StatusPendingEarlyLiquidation:
		return to == StatusEarlyLiquidated
	case StatusPendingEarlyRepayment:
		return to == StatusEarlyRepaid
	case StatusMatured, StatusEarlyLiquidated, StatusEarlyRepaid, StatusDefaulted:
		return false
	}
	return false
}

// Loan is the originated contract: created exactly once per matched
// offer+application pair, immutable after origination except for status and
// the outcome fields written by exit flows. Amounts are integer strings in
// the principal currency's smallest units unless noted.
type Loan struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`

	OfferID       string `gorm:"size:32;uniqueIndex:ux_loans_offer_application" json:"offer_id"`
	ApplicationID string `gorm:"size:32;uniqueIndex:ux_loans_offer_application" json:"application_id"`
	LenderID      string `gorm:"size:32;index" json:"lender_id"`
	BorrowerID    string `gorm:"size:32;index" json:"borrower_id"`

	PrincipalCurrencyID  string `gorm:"size:32;not null" json:"principal_currency_id"`
	CollateralCurrencyID string `gorm:"size:32;not null" json:"collateral_currency_id"`

	PrincipalAmount string          `gorm:"type:decimal(65,0);not null" json:"principal_amount"`
	InterestRate    decimal.Decimal `gorm:"type:decimal(6,4)" json:"interest_rate"`
	TermMonths      int             `gorm:"not null" json:"term_months"`

	InterestAmount         string `gorm:"type:decimal(65,0);not null" json:"interest_amount"`
	ProvisionAmount        string `gorm:"type:decimal(65,0);not null" json:"provision_amount"`
	LiquidationFee         string `gorm:"type:decimal(65,0);not null" json:"liquidation_fee"`
	RepaymentTotal         string `gorm:"type:decimal(65,0);not null" json:"repayment_total"`
	RedeliveryFee          string `gorm:"type:decimal(65,0);not null" json:"redelivery_fee"`
	RedeliveryAmount       string `gorm:"type:decimal(65,0);not null" json:"redelivery_amount"`
	MinCollateralValuation string `gorm:"type:decimal(65,0);not null" json:"min_collateral_valuation"`

	// CollateralAmount in collateral smallest units.
	CollateralAmount string          `gorm:"type:decimal(65,0);not null" json:"collateral_amount"`
	LtvRatio         decimal.Decimal `gorm:"type:decimal(8,6)" json:"ltv_ratio"`
	MarginCallLtv    decimal.Decimal `gorm:"type:decimal(8,6)" json:"margin_call_ltv"`

	OriginationDate time.Time `gorm:"not null" json:"origination_date"`
	MaturityDate    time.Time `gorm:"index;not null" json:"maturity_date"`

	Status Status `gorm:"type:enum('draft','active','pending_early_liquidation','pending_early_repayment','matured','early_liquidated','early_repaid','defaulted');default:'draft'" json:"status"`

	// Outcome fields written by the exit flows.
	ExitRequestedAt *time.Time `json:"exit_requested_at,omitempty"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
	// SettledSurplusDeficit: signed, principal smallest units; liquidation only.
	SettledSurplusDeficit *string `gorm:"type:decimal(65,0)" json:"settled_surplus_deficit,omitempty"`

	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) TransitionTo(next Status, now time.Time) error {
	if !canTransition(l.Status, next) {
		return fault.ErrIllegalStateTransition
	}
	l.Status = next
	l.StatusUpdatedAt = now.UTC()
	return nil
}
