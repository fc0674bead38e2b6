package policy

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskPolicy is a versioned platform risk snapshot. Rows are append-only;
// only the latest-effective snapshot as of a calculation's reference date is
// ever applied, and snapshots are never edited in place.
type RiskPolicy struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"-"`
	PolicyID string `gorm:"size:32;uniqueIndex:ux_risk_policies_policy_id" json:"policy_id"`
	Version  uint32 `gorm:"not null" json:"version"`

	ProvisionRate decimal.Decimal `gorm:"type:decimal(6,4)" json:"provision_rate"`
	MinLtvRatio   decimal.Decimal `gorm:"type:decimal(6,4)" json:"min_ltv_ratio"`
	MaxLtvRatio   decimal.Decimal `gorm:"type:decimal(6,4)" json:"max_ltv_ratio"`

	// Fee rates used by the origination calculator. Policy fields rather than
	// constants so they version and test like the LTV bounds.
	LiquidationFeeRate decimal.Decimal `gorm:"type:decimal(6,4)" json:"liquidation_fee_rate"`
	RedeliveryFeeRate  decimal.Decimal `gorm:"type:decimal(6,4)" json:"redelivery_fee_rate"`
	// SlippageRate haircuts early-liquidation proceeds.
	SlippageRate decimal.Decimal `gorm:"type:decimal(6,4)" json:"slippage_rate"`

	MinInterestRate decimal.Decimal `gorm:"type:decimal(6,4)" json:"min_interest_rate"`
	MaxInterestRate decimal.Decimal `gorm:"type:decimal(6,4)" json:"max_interest_rate"`
	// Loan size bounds in principal-currency smallest units.
	MinLoanAmount string `gorm:"type:decimal(65,0)" json:"min_loan_amount"`
	MaxLoanAmount string `gorm:"type:decimal(65,0)" json:"max_loan_amount"`

	EffectiveAt time.Time `gorm:"index;not null" json:"effective_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RiskPolicy) TableName() string { return "risk_policies" }
