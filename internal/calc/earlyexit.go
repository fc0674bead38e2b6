package calc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LiquidationEstimateInput values an active loan's collateral against its
// outstanding debt at the current bid price.
type LiquidationEstimateInput struct {
	// CollateralAmount in collateral-currency smallest units.
	CollateralAmount   string
	CollateralDecimals uint32
	PrincipalDecimals  uint32

	// BidPrice is the integer-scaled (RateScale) collateral price.
	BidPrice string
	// TotalOutstanding in principal-currency smallest units (repayment total
	// plus the liquidation fee).
	TotalOutstanding string
	// SlippageRate is the policy haircut applied to the sale proceeds,
	// decimal in [0,1).
	SlippageRate decimal.Decimal

	MaturityDate time.Time
	EstimateDate time.Time
}

// LiquidationEstimate is a signed valuation outcome: a negative
// EstimatedSurplusDeficit means liquidating now would not cover the debt.
type LiquidationEstimate struct {
	// CollateralValuation in principal-currency smallest units after slippage.
	CollateralValuation string
	TotalOutstanding    string
	// EstimatedSurplusDeficit = valuation - outstanding, signed.
	EstimatedSurplusDeficit string
	AppliedRate             decimal.Decimal
	RemainingTermDays       int
}

// EstimateLiquidation prices an early liquidation. It never fails on a
// deficit; an under-water position is a valid, negative estimate.
func EstimateLiquidation(in LiquidationEstimateInput) (*LiquidationEstimate, error) {
	collateral, err := parseAmount(in.CollateralAmount)
	if err != nil {
		return nil, err
	}
	outstanding, err := parseAmount(in.TotalOutstanding)
	if err != nil {
		return nil, err
	}
	rate, err := rateFromScaled(in.BidPrice)
	if err != nil {
		return nil, fmt.Errorf("bid price: %w", err)
	}

	collateralHuman := collateral.Shift(-int32(in.CollateralDecimals))
	grossHuman := collateralHuman.Mul(rate)
	netHuman := grossHuman.Mul(decimal.NewFromInt(1).Sub(in.SlippageRate))
	// Proceeds are floored: the estimate never promises more than a sale
	// could deliver.
	valuation := netHuman.Shift(int32(in.PrincipalDecimals)).Floor()

	return &LiquidationEstimate{
		CollateralValuation:     valuation.String(),
		TotalOutstanding:        outstanding.String(),
		EstimatedSurplusDeficit: valuation.Sub(outstanding).String(),
		AppliedRate:             rate,
		RemainingTermDays:       remainingDays(in.EstimateDate, in.MaturityDate),
	}, nil
}

// RepaymentEstimateInput carries the originated schedule fields an early
// repayment quote needs.
type RepaymentEstimateInput struct {
	RepaymentTotal   string
	RedeliveryAmount string
	MaturityDate     time.Time
	EstimateDate     time.Time
}

// RepaymentEstimate quotes an early repayment under the full-interest policy:
// the borrower owes the complete repayment total regardless of how much term
// remains; only the redelivery fee is already netted out of what returns.
type RepaymentEstimate struct {
	AmountDue         string
	RedeliveryAmount  string
	RemainingTermDays int
	MaturityDate      time.Time
}

func EstimateRepayment(in RepaymentEstimateInput) (*RepaymentEstimate, error) {
	due, err := parseAmount(in.RepaymentTotal)
	if err != nil {
		return nil, err
	}
	redelivery, err := parseAmount(in.RedeliveryAmount)
	if err != nil {
		return nil, err
	}
	return &RepaymentEstimate{
		AmountDue:         due.String(),
		RedeliveryAmount:  redelivery.String(),
		RemainingTermDays: remainingDays(in.EstimateDate, in.MaturityDate),
		MaturityDate:      in.MaturityDate,
	}, nil
}

// remainingDays counts whole days from now until maturity, never negative.
func remainingDays(now, maturity time.Time) int {
	d := int(maturity.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
