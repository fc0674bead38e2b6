package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cryptolend-backend/internal/domain/currency"
	"cryptolend-backend/internal/domain/fault"
	"cryptolend-backend/internal/domain/invoice"
	domainLoan "cryptolend-backend/internal/domain/loan"
	"cryptolend-backend/internal/domain/policy"
	"cryptolend-backend/internal/domain/uow"
	"cryptolend-backend/internal/testutil/currencymock"
	"cryptolend-backend/internal/testutil/invoicemock"
	"cryptolend-backend/internal/testutil/loanmock"
	"cryptolend-backend/internal/testutil/policymock"
	"cryptolend-backend/internal/testutil/uowmock"
)

func testCurrencies(t *testing.T) *currencymock.Repo {
	t.Helper()
	usdt := &currency.Currency{CurrencyID: "cur-usdt", Decimals: 6}
	wbtc := &currency.Currency{CurrencyID: "cur-wbtc", Decimals: 8}
	return &currencymock.Repo{
		GetByCurrencyIDFn: func(ctx context.Context, currencyID string) (*currency.Currency, error) {
			switch currencyID {
			case "cur-usdt":
				return usdt, nil
			case "cur-wbtc":
				return wbtc, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		GetLatestRateFn: func(ctx context.Context, base, quote string) (*currency.ExchangeRate, error) {
			return &currency.ExchangeRate{
				RateID:   "rate-1",
				BidPrice: "60000000000000000000000",
				AskPrice: "60100000000000000000000",
			}, nil
		},
	}
}

func testPolicy(t *testing.T) *policymock.Repo {
	t.Helper()
	return &policymock.Repo{
		LatestEffectiveFn: func(ctx context.Context, asOf time.Time) (*policy.RiskPolicy, error) {
			return &policy.RiskPolicy{
				PolicyID:     "pol-1",
				SlippageRate: decimal.RequireFromString("0.02"),
			}, nil
		},
	}
}

func activeLoan() *domainLoan.Loan {
	return &domainLoan.Loan{
		LoanID:               "loan-1",
		BorrowerID:           "borrower-1",
		PrincipalCurrencyID:  "cur-usdt",
		CollateralCurrencyID: "cur-wbtc",
		PrincipalAmount:      "30000000000",
		RepaymentTotal:       "34500000000",
		RedeliveryAmount:     "34464000000",
		// Outstanding at liquidation = repayment total + liquidation fee.
		MinCollateralValuation: "35100000000",
		CollateralAmount:       "100000000",
		MaturityDate:           time.Now().UTC().Add(90 * 24 * time.Hour),
		Status:                 domainLoan.StatusActive,
	}
}

func loanTx(loans *loanmock.Repo, invoices *invoicemock.Repo) *uowmock.UoW {
	r := uow.Repos{Loans: loans, Invoices: invoices}
	return &uowmock.UoW{
		WithinTxFn: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return fn(r)
		},
	}
}

func repoFor(l *domainLoan.Loan) *loanmock.Repo {
	return &loanmock.Repo{
		GetByLoanIDFn: func(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
			if loanID != l.LoanID {
				return nil, gorm.ErrRecordNotFound
			}
			return l, nil
		},
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
			if loanID != l.LoanID {
				return nil, gorm.ErrRecordNotFound
			}
			return l, nil
		},
	}
}

func TestActivateOnDisbursement(t *testing.T) {
	l := activeLoan()
	l.Status = domainLoan.StatusDraft
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	if err := uc.ActivateOnDisbursement(context.Background(), "loan-1", time.Now().UTC()); err != nil {
		t.Fatalf("ActivateOnDisbursement: %v", err)
	}
	if l.Status != domainLoan.StatusActive {
		t.Fatalf("status = %s, want active", l.Status)
	}

	// Replayed disbursement event is a no-op.
	if err := uc.ActivateOnDisbursement(context.Background(), "loan-1", time.Now().UTC()); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if l.Status != domainLoan.StatusActive {
		t.Fatalf("status = %s after replay", l.Status)
	}
}

func TestEstimateEarlyLiquidation(t *testing.T) {
	l := activeLoan()
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	est, err := uc.EstimateEarlyLiquidation(context.Background(), "loan-1", "borrower-1")
	if err != nil {
		t.Fatalf("EstimateEarlyLiquidation: %v", err)
	}
	// 1 WBTC * 60000 * 0.98 = 58800 USDT.
	if est.CollateralValuation != "58800000000" {
		t.Fatalf("valuation = %s, want 58800000000", est.CollateralValuation)
	}
	if est.EstimatedSurplusDeficit != "23700000000" {
		t.Fatalf("surplus = %s, want 23700000000", est.EstimatedSurplusDeficit)
	}
}

func TestEstimateEarlyLiquidation_NotActive(t *testing.T) {
	l := activeLoan()
	l.Status = domainLoan.StatusDraft
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	if _, err := uc.EstimateEarlyLiquidation(context.Background(), "loan-1", "borrower-1"); !errors.Is(err, fault.ErrIllegalStateTransition) {
		t.Fatalf("want ErrIllegalStateTransition, got %v", err)
	}
}

func TestEstimateEarlyLiquidation_WrongBorrower(t *testing.T) {
	l := activeLoan()
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	if _, err := uc.EstimateEarlyLiquidation(context.Background(), "loan-1", "somebody-else"); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestRequestEarlyLiquidation_RequiresAcknowledgment(t *testing.T) {
	l := activeLoan()
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	_, err := uc.RequestEarlyLiquidation(context.Background(), ExitRequestInput{
		LoanID: "loan-1", BorrowerID: "borrower-1", RiskAcknowledged: false,
	})
	if !errors.Is(err, fault.ErrPreconditionNotAcknowledged) {
		t.Fatalf("want ErrPreconditionNotAcknowledged, got %v", err)
	}
	if l.Status != domainLoan.StatusActive {
		t.Fatal("loan mutated by rejected request")
	}
}

func TestRequestEarlyLiquidation(t *testing.T) {
	l := activeLoan()
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	dto, err := uc.RequestEarlyLiquidation(context.Background(), ExitRequestInput{
		LoanID: "loan-1", BorrowerID: "borrower-1", RiskAcknowledged: true,
	})
	if err != nil {
		t.Fatalf("RequestEarlyLiquidation: %v", err)
	}
	if dto.Status != string(domainLoan.StatusPendingEarlyLiquidation) {
		t.Fatalf("status = %s", dto.Status)
	}
	if l.ExitRequestedAt == nil {
		t.Fatal("exit request time not recorded")
	}

	// A second request finds the loan already pending and is rejected.
	_, err = uc.RequestEarlyLiquidation(context.Background(), ExitRequestInput{
		LoanID: "loan-1", BorrowerID: "borrower-1", RiskAcknowledged: true,
	})
	if !errors.Is(err, fault.ErrIllegalStateTransition) {
		t.Fatalf("second request: want ErrIllegalStateTransition, got %v", err)
	}
}

func TestRequestEarlyRepayment_OpensInvoice(t *testing.T) {
	l := activeLoan()
	loans := repoFor(l)
	var created *invoice.Invoice
	invoices := &invoicemock.Repo{
		CreateFn: func(ctx context.Context, inv *invoice.Invoice) error {
			created = inv
			return nil
		},
	}
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, invoices))

	dto, err := uc.RequestEarlyRepayment(context.Background(), ExitRequestInput{
		LoanID: "loan-1", BorrowerID: "borrower-1", RiskAcknowledged: true,
	})
	if err != nil {
		t.Fatalf("RequestEarlyRepayment: %v", err)
	}
	if dto.Status != string(domainLoan.StatusPendingEarlyRepayment) {
		t.Fatalf("status = %s", dto.Status)
	}
	if created == nil {
		t.Fatal("repayment invoice must be created")
	}
	if created.Type != invoice.TypeRepayment {
		t.Fatalf("invoice type = %s", created.Type)
	}
	if created.Amount != l.RepaymentTotal {
		t.Fatalf("invoice amount = %s, want the full repayment total %s", created.Amount, l.RepaymentTotal)
	}
}

func TestEstimateEarlyRepayment(t *testing.T) {
	l := activeLoan()
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	est, err := uc.EstimateEarlyRepayment(context.Background(), "loan-1", "borrower-1")
	if err != nil {
		t.Fatalf("EstimateEarlyRepayment: %v", err)
	}
	if est.AmountDue != l.RepaymentTotal {
		t.Fatalf("amount due = %s, want full repayment total", est.AmountDue)
	}
	if est.RedeliveryAmount != l.RedeliveryAmount {
		t.Fatalf("redelivery = %s", est.RedeliveryAmount)
	}
}

func TestSettleEarlyLiquidation(t *testing.T) {
	l := activeLoan()
	l.Status = domainLoan.StatusPendingEarlyLiquidation
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	settledAt := time.Now().UTC()
	if err := uc.SettleEarlyLiquidation(context.Background(), "loan-1", "-530000000", settledAt); err != nil {
		t.Fatalf("SettleEarlyLiquidation: %v", err)
	}
	if l.Status != domainLoan.StatusEarlyLiquidated {
		t.Fatalf("status = %s", l.Status)
	}
	if l.SettledSurplusDeficit == nil || *l.SettledSurplusDeficit != "-530000000" {
		t.Fatalf("settled surplus/deficit = %v", l.SettledSurplusDeficit)
	}
	if l.SettledAt == nil {
		t.Fatal("settled time not recorded")
	}

	// Settlement replay is absorbed.
	if err := uc.SettleEarlyLiquidation(context.Background(), "loan-1", "-530000000", settledAt); err != nil {
		t.Fatalf("replay: %v", err)
	}
}

func TestSettleEarlyRepayment(t *testing.T) {
	l := activeLoan()
	l.Status = domainLoan.StatusPendingEarlyRepayment
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	if err := uc.SettleEarlyRepayment(context.Background(), "loan-1", time.Now().UTC()); err != nil {
		t.Fatalf("SettleEarlyRepayment: %v", err)
	}
	if l.Status != domainLoan.StatusEarlyRepaid {
		t.Fatalf("status = %s", l.Status)
	}
	if l.SettledSurplusDeficit != nil {
		t.Fatal("repayment settlement must not record a surplus/deficit")
	}
}

func TestSettle_WrongPendingKindRejected(t *testing.T) {
	l := activeLoan()
	l.Status = domainLoan.StatusPendingEarlyRepayment
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	err := uc.SettleEarlyLiquidation(context.Background(), "loan-1", "0", time.Now().UTC())
	if !errors.Is(err, fault.ErrIllegalStateTransition) {
		t.Fatalf("want ErrIllegalStateTransition, got %v", err)
	}
}

func TestMatureDue(t *testing.T) {
	now := time.Now().UTC()
	l := activeLoan()
	l.MaturityDate = now.Add(-time.Hour)
	loans := repoFor(l)
	loans.ListMaturableFn = func(ctx context.Context, at time.Time, limit int) ([]domainLoan.Loan, error) {
		return []domainLoan.Loan{*l}, nil
	}
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	n, err := uc.MatureDue(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("MatureDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("matured %d, want 1", n)
	}
	if l.Status != domainLoan.StatusMatured {
		t.Fatalf("status = %s", l.Status)
	}
}

func TestMatureDue_SkipsExitedLoan(t *testing.T) {
	now := time.Now().UTC()
	l := activeLoan()
	l.MaturityDate = now.Add(-time.Hour)
	l.Status = domainLoan.StatusPendingEarlyRepayment
	loans := repoFor(l)
	loans.ListMaturableFn = func(ctx context.Context, at time.Time, limit int) ([]domainLoan.Loan, error) {
		// Listing raced an exit request; the lock re-read sees the pending state.
		stale := *l
		stale.Status = domainLoan.StatusActive
		return []domainLoan.Loan{stale}, nil
	}
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	n, err := uc.MatureDue(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("MatureDue must tolerate a concurrent exit: %v", err)
	}
	if n != 0 {
		t.Fatalf("matured count = %d, skipped loans must not be counted", n)
	}
	if l.Status != domainLoan.StatusPendingEarlyRepayment {
		t.Fatalf("status = %s, want pending exit untouched", l.Status)
	}
}

func TestMarkDefaulted(t *testing.T) {
	l := activeLoan()
	loans := repoFor(l)
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), loanTx(loans, &invoicemock.Repo{}))

	dto, err := uc.MarkDefaulted(context.Background(), "loan-1")
	if err != nil {
		t.Fatalf("MarkDefaulted: %v", err)
	}
	if dto.Status != string(domainLoan.StatusDefaulted) {
		t.Fatalf("status = %s", dto.Status)
	}

	if _, err := uc.MarkDefaulted(context.Background(), "loan-1"); !errors.Is(err, fault.ErrIllegalStateTransition) {
		t.Fatalf("second default: want ErrIllegalStateTransition, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	loans := repoFor(activeLoan())
	uc := NewUsecase(loans, testCurrencies(t), testPolicy(t), uowmock.New())
	if _, err := uc.Get(context.Background(), "missing"); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
