package calc

import (
	"time"

	"github.com/shopspring/decimal"
)

// OriginationInput is the matched principal/collateral pair plus the policy
// snapshot fields that price the loan at origination.
type OriginationInput struct {
	// PrincipalAmount in principal-currency smallest units.
	PrincipalAmount string
	// InterestRate for the full term, decimal in [0,1].
	InterestRate decimal.Decimal
	TermMonths   int

	// CollateralAmount in collateral-currency smallest units, as matched.
	CollateralAmount string
	LtvRatio         decimal.Decimal
	// CollateralValuation in principal-currency smallest units at match time.
	CollateralValuation string

	ProvisionRate      decimal.Decimal
	LiquidationFeeRate decimal.Decimal
	RedeliveryFeeRate  decimal.Decimal

	OriginationDate time.Time
}

// Schedule is the full economic record of a loan at origination. All amounts
// are principal-currency smallest units unless noted.
type Schedule struct {
	InterestAmount  string
	ProvisionAmount string
	LiquidationFee  string
	RepaymentTotal  string
	RedeliveryFee   string
	// RedeliveryAmount is what actually moves back on repayment:
	// repayment total minus the redelivery fee.
	RedeliveryAmount string
	// MinCollateralValuation is the floor under which the collateral no longer
	// covers repayment plus liquidation costs.
	MinCollateralValuation string
	// MarginCallLtv is principal / minCollateralValuation, kept as a ratio for
	// comparison and alerting, never floored.
	MarginCallLtv decimal.Decimal

	CollateralAmount string
	MaturityDate     time.Time
}

// Originate computes the loan's economic schedule at the moment it
// originates. Pure and total for valid inputs; all fee amounts are floored so
// rounding never favors the platform.
func Originate(in OriginationInput) (*Schedule, error) {
	principal, err := parseAmount(in.PrincipalAmount)
	if err != nil {
		return nil, err
	}

	interest := principal.Mul(in.InterestRate).Floor()
	premi := principal.Mul(in.ProvisionRate).Floor()
	liquidationFee := principal.Mul(in.LiquidationFeeRate).Floor()

	repaymentTotal := principal.Add(interest).Add(premi)
	redeliveryFee := interest.Mul(in.RedeliveryFeeRate).Floor()
	redeliveryAmount := repaymentTotal.Sub(redeliveryFee)
	minCollateralValuation := repaymentTotal.Add(liquidationFee)

	if !minCollateralValuation.IsPositive() {
		panic("calc: non-positive minimum collateral valuation")
	}
	marginCallLtv := principal.Div(minCollateralValuation)

	return &Schedule{
		InterestAmount:         interest.String(),
		ProvisionAmount:        premi.String(),
		LiquidationFee:         liquidationFee.String(),
		RepaymentTotal:         repaymentTotal.String(),
		RedeliveryFee:          redeliveryFee.String(),
		RedeliveryAmount:       redeliveryAmount.String(),
		MinCollateralValuation: minCollateralValuation.String(),
		MarginCallLtv:          marginCallLtv,
		CollateralAmount:       in.CollateralAmount,
		MaturityDate:           AddMonthsClamped(in.OriginationDate, in.TermMonths),
	}, nil
}

// AddMonthsClamped advances t by the given number of calendar months,
// preserving the day-of-month where valid and clamping to the target month's
// last day otherwise (Jan 31 + 1 month = Feb 28/29, never Mar 2/3 as plain
// AddDate would give).
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
