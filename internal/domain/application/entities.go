package application

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cryptolend-backend/internal/domain/fault"
)

type Status string

const (
	// StatusPendingCollateral: created, waiting for the collateral-deposit
	// invoice to be paid.
	StatusPendingCollateral Status = "pending_collateral"
	// StatusMatched: collateral received and matched against an offer. Terminal.
	StatusMatched Status = "matched"
	// StatusCancelled: borrower-cancelled before collateral arrived. Terminal.
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool { return s == StatusMatched || s == StatusCancelled }

func canTransition(from, to Status) bool {
	switch from {
	case StatusPendingCollateral:
		return to == StatusMatched || to == StatusCancelled
	case StatusMatched, StatusCancelled:
		return false
	}
	return false
}

// LoanApplication is a borrower's request against the marketplace. Amounts
// are integer strings in their denominated currency's smallest units.
type LoanApplication struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string `gorm:"size:32;uniqueIndex:ux_loan_applications_application_id" json:"application_id"`
	BorrowerID    string `gorm:"size:32;index:idx_loan_applications_borrower" json:"borrower_id"`
	OfferID       string `gorm:"size:32;index" json:"offer_id"`

	PrincipalCurrencyID  string `gorm:"size:32;not null" json:"principal_currency_id"`
	CollateralCurrencyID string `gorm:"size:32;not null" json:"collateral_currency_id"`

	// PrincipalAmount in principal smallest units; CollateralDepositAmount in
	// collateral smallest units, sized by the requirement calculator.
	PrincipalAmount         string `gorm:"type:decimal(65,0);not null" json:"principal_amount"`
	CollateralDepositAmount string `gorm:"type:decimal(65,0);not null" json:"collateral_deposit_amount"`
	ProvisionAmount         string `gorm:"type:decimal(65,0);not null" json:"provision_amount"`

	// LTV bounds and rate snapshot taken at application time, for audit.
	MinLtvRatio   decimal.Decimal `gorm:"type:decimal(6,4)" json:"min_ltv_ratio"`
	MaxLtvRatio   decimal.Decimal `gorm:"type:decimal(6,4)" json:"max_ltv_ratio"`
	AppliedRateID string          `gorm:"size:32" json:"applied_rate_id"`

	TermMonths int `gorm:"not null" json:"term_months"`

	DepositInvoiceID string `gorm:"size:36;index" json:"deposit_invoice_id"`

	Status       Status  `gorm:"type:enum('pending_collateral','matched','cancelled');default:'pending_collateral'" json:"status"`
	CancelReason *string `gorm:"size:255" json:"cancel_reason,omitempty"`

	ApplicationDate time.Time      `gorm:"index;not null" json:"application_date"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanApplication) TableName() string { return "loan_applications" }

func (a *LoanApplication) TransitionTo(next Status, now time.Time) error {
	if !canTransition(a.Status, next) {
		return fault.ErrIllegalStateTransition
	}
	a.Status = next
	a.StatusUpdatedAt = now.UTC()
	return nil
}

// Cancel is borrower-initiated and only legal while pending collateral.
// A second cancel fails rather than silently succeeding.
func (a *LoanApplication) Cancel(reason string, now time.Time) error {
	if err := a.TransitionTo(StatusCancelled, now); err != nil {
		return err
	}
	a.CancelReason = &reason
	return nil
}
