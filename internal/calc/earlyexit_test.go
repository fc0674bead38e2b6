package calc

import (
	"testing"
	"time"
)

func TestEstimateLiquidation_Surplus(t *testing.T) {
	// 1 collateral unit at 2400 with 2% slippage: proceeds 2352, outstanding
	// 2000, surplus 352.
	maturity := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	est, err := EstimateLiquidation(LiquidationEstimateInput{
		CollateralAmount:   "100000000", // 1 unit, 8 decimals
		CollateralDecimals: 8,
		PrincipalDecimals:  6,
		BidPrice:           scaled18(t, "2400"),
		TotalOutstanding:   "2000000000", // 2000 with 6 decimals
		SlippageRate:       dec(t, "0.02"),
		MaturityDate:       maturity,
		EstimateDate:       maturity.Add(-10 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("EstimateLiquidation: %v", err)
	}
	if est.CollateralValuation != "2352000000" {
		t.Fatalf("valuation = %s, want 2352000000", est.CollateralValuation)
	}
	if est.EstimatedSurplusDeficit != "352000000" {
		t.Fatalf("surplus = %s, want 352000000", est.EstimatedSurplusDeficit)
	}
	if est.RemainingTermDays != 10 {
		t.Fatalf("remaining days = %d, want 10", est.RemainingTermDays)
	}
}

func TestEstimateLiquidation_DeficitIsNotAnError(t *testing.T) {
	// Collateral worth less than the debt: the estimate succeeds and the
	// surplus goes negative.
	est, err := EstimateLiquidation(LiquidationEstimateInput{
		CollateralAmount:   "100000000",
		CollateralDecimals: 8,
		PrincipalDecimals:  6,
		BidPrice:           scaled18(t, "1500"),
		TotalOutstanding:   "2000000000",
		SlippageRate:       dec(t, "0.02"),
		MaturityDate:       time.Now().UTC().Add(24 * time.Hour),
		EstimateDate:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("EstimateLiquidation: %v", err)
	}
	// 1500 * 0.98 = 1470, vs 2000 outstanding.
	if est.EstimatedSurplusDeficit != "-530000000" {
		t.Fatalf("deficit = %s, want -530000000", est.EstimatedSurplusDeficit)
	}
}

func TestEstimateLiquidation_ProceedsFloored(t *testing.T) {
	// 0.33333333 units at 999 * 0.99 slippage leaves a fractional smallest
	// unit, which must floor.
	est, err := EstimateLiquidation(LiquidationEstimateInput{
		CollateralAmount:   "33333333",
		CollateralDecimals: 8,
		PrincipalDecimals:  2,
		BidPrice:           scaled18(t, "999"),
		TotalOutstanding:   "1",
		SlippageRate:       dec(t, "0.01"),
		MaturityDate:       time.Now().UTC(),
		EstimateDate:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("EstimateLiquidation: %v", err)
	}
	// 0.33333333 * 999 * 0.99 = 329.669996... -> 32966 in 2-decimal units.
	if est.CollateralValuation != "32966" {
		t.Fatalf("valuation = %s, want 32966", est.CollateralValuation)
	}
}

func TestEstimateRepayment_FullInterestPolicy(t *testing.T) {
	maturity := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	est, err := EstimateRepayment(RepaymentEstimateInput{
		RepaymentTotal:   "11550000000000000000",
		RedeliveryAmount: "11537500000000000000",
		MaturityDate:     maturity,
		EstimateDate:     maturity.Add(-90 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("EstimateRepayment: %v", err)
	}
	if est.AmountDue != "11550000000000000000" {
		t.Fatalf("amount due = %s", est.AmountDue)
	}
	if est.RedeliveryAmount != "11537500000000000000" {
		t.Fatalf("redelivery = %s", est.RedeliveryAmount)
	}
	if est.RemainingTermDays != 90 {
		t.Fatalf("remaining days = %d, want 90", est.RemainingTermDays)
	}
}

func TestEstimateRepayment_PastMaturityClampsToZeroDays(t *testing.T) {
	maturity := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	est, err := EstimateRepayment(RepaymentEstimateInput{
		RepaymentTotal:   "100",
		RedeliveryAmount: "99",
		MaturityDate:     maturity,
		EstimateDate:     maturity.Add(5 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("EstimateRepayment: %v", err)
	}
	if est.RemainingTermDays != 0 {
		t.Fatalf("remaining days = %d, want 0", est.RemainingTermDays)
	}
}
