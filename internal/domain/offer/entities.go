package offer

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cryptolend-backend/internal/domain/fault"
)

type Status string

const (
	// StatusFunding: created, waiting for the funding invoice to be paid.
	StatusFunding Status = "funding"
	// StatusPublished: fully funded, visible to borrowers, matchable.
	StatusPublished Status = "published"
	// StatusClosed: explicitly closed by the lender. Terminal.
	StatusClosed Status = "closed"
	// StatusExpired: passed ExpiresAt without explicit closure. Terminal.
	// Presented externally as closed; kept distinct for audit.
	StatusExpired Status = "expired"
)

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool { return s == StatusClosed || s == StatusExpired }

// External folds the audit-only expired state into closed for presentation.
func (s Status) External() Status {
	switch s {
	case StatusFunding, StatusPublished, StatusClosed:
		return s
	case StatusExpired:
		return StatusClosed
	}
	return s
}

// canTransition is the exhaustive legal-transition table for offers.
func canTransition(from, to Status) bool {
	switch from {
	case StatusFunding:
		return to == StatusPublished || to == StatusClosed || to == StatusExpired
	case StatusPublished:
		return to == StatusClosed || to == StatusExpired
	case StatusClosed, StatusExpired:
		return false
	}
	return false
}

// LoanOffer is a lender's standing offer. All amounts are integer strings in
// the principal currency's smallest units.
type LoanOffer struct {
	ID      uint64 `gorm:"primaryKey;column:id" json:"-"`
	OfferID string `gorm:"size:32;uniqueIndex:ux_loan_offers_offer_id" json:"offer_id"`
	LenderID string `gorm:"size:32;index:idx_loan_offers_lender" json:"lender_id"`

	PrincipalCurrencyID  string `gorm:"size:32;not null" json:"principal_currency_id"`
	CollateralCurrencyID string `gorm:"size:32;not null" json:"collateral_currency_id"`

	OfferedAmount   string `gorm:"type:decimal(65,0);not null" json:"offered_amount"`
	AvailableAmount string `gorm:"type:decimal(65,0);not null" json:"available_amount"`
	MinLoanAmount   string `gorm:"type:decimal(65,0);not null" json:"min_loan_amount"`
	MaxLoanAmount   string `gorm:"type:decimal(65,0);not null" json:"max_loan_amount"`

	InterestRate decimal.Decimal `gorm:"type:decimal(6,4)" json:"interest_rate"`
	// TermOptions is the allowed month counts, comma-separated (e.g. "3,6,12").
	TermOptions string `gorm:"size:64" json:"term_options"`

	FundingInvoiceID string `gorm:"size:36;index" json:"funding_invoice_id"`

	Status       Status  `gorm:"type:enum('funding','published','closed','expired');default:'funding'" json:"status"`
	CloseReason  *string `gorm:"size:255" json:"close_reason,omitempty"`

	ExpiresAt       time.Time      `gorm:"index" json:"expires_at"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanOffer) TableName() string { return "loan_offers" }

// TransitionTo validates and applies a status change.
func (o *LoanOffer) TransitionTo(next Status, now time.Time) error {
	if !canTransition(o.Status, next) {
		return fault.ErrIllegalStateTransition
	}
	o.Status = next
	o.StatusUpdatedAt = now.UTC()
	return nil
}

// Reserve consumes a slice of availability for a match. Availability only
// decreases and never goes negative; a would-be overdraw loses with
// fault.ErrInsufficientAvailability. Callers must hold the offer row lock.
func (o *LoanOffer) Reserve(amount string) error {
	if o.Status != StatusPublished {
		return fault.ErrIllegalStateTransition
	}
	avail, err := decimal.NewFromString(o.AvailableAmount)
	if err != nil {
		return err
	}
	want, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	if !want.IsPositive() {
		return fault.ErrInsufficientAvailability
	}
	if want.GreaterThan(avail) {
		return fault.ErrInsufficientAvailability
	}
	o.AvailableAmount = avail.Sub(want).String()
	return nil
}

// AllowsTerm reports whether months is one of the offer's term options.
func (o *LoanOffer) AllowsTerm(months int) bool {
	for _, part := range strings.Split(o.TermOptions, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n == months {
			return true
		}
	}
	return false
}
