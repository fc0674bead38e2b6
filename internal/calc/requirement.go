package calc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRequirementValidity is how long a computed collateral requirement is
// honored before the quote must be recomputed against a fresh rate.
const DefaultRequirementValidity = 30 * 24 * time.Hour

// RequirementInput carries everything the collateral-requirement calculation
// needs. Lookups (currency decimals, policy snapshot, rate) are done by the
// caller; the calculator stays pure.
type RequirementInput struct {
	// PrincipalAmount in principal-currency smallest units.
	PrincipalAmount    string
	PrincipalDecimals  uint32
	CollateralDecimals uint32

	ProvisionRate decimal.Decimal
	MinLtvRatio   decimal.Decimal
	MaxLtvRatio   decimal.Decimal

	// BidPrice is the integer-scaled (RateScale) price of one collateral unit
	// in the principal's pricing currency.
	BidPrice string
	RateID   string
	RateDate time.Time

	TermMonths      int
	CalculationDate time.Time
	// ExpirationDate overrides the default 30-day validity when set.
	ExpirationDate *time.Time
}

// RequirementResult is the computed collateral requirement plus the audit
// trail of the rate and LTV bounds that produced it.
type RequirementResult struct {
	// RequiredCollateralAmount in collateral-currency smallest units.
	RequiredCollateralAmount string
	// ProvisionAmount (origination fee) in principal-currency smallest units.
	ProvisionAmount string

	MinLtvRatio decimal.Decimal
	MaxLtvRatio decimal.Decimal

	// AppliedRate is the decimal bid price used, kept with its source id and
	// observation time for auditability.
	AppliedRate decimal.Decimal
	RateID      string
	RateDate    time.Time

	ExpirationDate time.Time
}

// Requirement sizes the collateral a borrower must deposit for the given
// principal under the platform's LTV policy and the supplied rate.
//
// Rounding is deliberately asymmetric: the provision fee is floored (never
// charges more than the exact value) while the collateral is ceiled to whole
// human units (never under-collateralizes because of rounding).
func Requirement(in RequirementInput) (*RequirementResult, error) {
	principal, err := parseAmount(in.PrincipalAmount)
	if err != nil {
		return nil, err
	}
	rate, err := rateFromScaled(in.BidPrice)
	if err != nil {
		return nil, fmt.Errorf("bid price: %w", err)
	}

	provision := principal.Mul(in.ProvisionRate).Floor()

	denom := in.MinLtvRatio.Mul(rate)
	if !denom.IsPositive() {
		// Policy and rate records are enforced positive upstream; reaching
		// zero here is an invariant violation, not an input error.
		panic(fmt.Sprintf("calc: non-positive ltv*rate denominator (ltv=%s rate=%s)",
			in.MinLtvRatio, rate))
	}

	principalHuman := principal.Shift(-int32(in.PrincipalDecimals))
	requiredHuman := principalHuman.Div(denom).Ceil()
	// Div rounds at DivisionPrecision before Ceil, which can swallow a
	// fractional excess past 16 significant digits. Verify against the exact
	// product and bump, so rounding never under-collateralizes.
	if requiredHuman.Mul(denom).LessThan(principalHuman) {
		requiredHuman = requiredHuman.Add(decimal.NewFromInt(1))
	}
	requiredCollateral := requiredHuman.Shift(int32(in.CollateralDecimals))

	expiration := in.CalculationDate.Add(DefaultRequirementValidity)
	if in.ExpirationDate != nil {
		expiration = *in.ExpirationDate
	}

	return &RequirementResult{
		RequiredCollateralAmount: requiredCollateral.String(),
		ProvisionAmount:          provision.String(),
		MinLtvRatio:              in.MinLtvRatio,
		MaxLtvRatio:              in.MaxLtvRatio,
		AppliedRate:              rate,
		RateID:                   in.RateID,
		RateDate:                 in.RateDate,
		ExpirationDate:           expiration,
	}, nil
}
