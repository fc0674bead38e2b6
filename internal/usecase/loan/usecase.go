package loan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cryptolend-backend/internal/calc"
	"cryptolend-backend/internal/domain/currency"
	"cryptolend-backend/internal/domain/fault"
	"cryptolend-backend/internal/domain/invoice"
	domainLoan "cryptolend-backend/internal/domain/loan"
	"cryptolend-backend/internal/domain/policy"
	"cryptolend-backend/internal/domain/uow"
)

// RepaymentInvoiceValidity is how long an early-repayment invoice stays payable.
const RepaymentInvoiceValidity = 7 * 24 * time.Hour

type Usecase struct {
	loans      domainLoan.Repository
	currencies currency.Repository
	policies   policy.Repository
	uow        uow.UnitOfWork
}

func NewUsecase(loans domainLoan.Repository, currencies currency.Repository, policies policy.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{loans: loans, currencies: currencies, policies: policies, uow: tx}
}

// ActivateOnDisbursement reacts to the settlement collaborator confirming the
// principal left the platform. Replays on an already-active loan are no-ops.
func (u *Usecase) ActivateOnDisbursement(ctx context.Context, loanID string, disbursedAt time.Time) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return notFoundErr(err)
		}
		if l.Status != domainLoan.StatusDraft {
			return nil
		}
		if err := l.TransitionTo(domainLoan.StatusActive, disbursedAt); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	})
}

// EstimateEarlyLiquidation is the pure first phase of the liquidation
// protocol: repeatable, side-effect free, valid only while the loan runs.
func (u *Usecase) EstimateEarlyLiquidation(ctx context.Context, loanID, borrowerID string) (*calc.LiquidationEstimate, error) {
	l, err := u.getOwned(ctx, loanID, borrowerID)
	if err != nil {
		return nil, err
	}
	if l.Status != domainLoan.StatusActive {
		return nil, fault.ErrIllegalStateTransition
	}

	principalCur, err := u.currencies.GetByCurrencyID(ctx, l.PrincipalCurrencyID)
	if err != nil {
		return nil, currencyErr(err)
	}
	collateralCur, err := u.currencies.GetByCurrencyID(ctx, l.CollateralCurrencyID)
	if err != nil {
		return nil, currencyErr(err)
	}
	xr, err := u.currencies.GetLatestRate(ctx, collateralCur.CurrencyID, principalCur.CurrencyID)
	if err != nil {
		return nil, currencyErr(err)
	}
	now := time.Now().UTC()
	pol, err := u.policies.LatestEffective(ctx, now)
	if err != nil {
		return nil, err
	}

	return calc.EstimateLiquidation(calc.LiquidationEstimateInput{
		CollateralAmount:   l.CollateralAmount,
		CollateralDecimals: collateralCur.Decimals,
		PrincipalDecimals:  principalCur.Decimals,
		BidPrice:           xr.BidPrice,
		TotalOutstanding:   l.MinCollateralValuation,
		SlippageRate:       pol.SlippageRate,
		MaturityDate:       l.MaturityDate,
		EstimateDate:       now,
	})
}

// RequestEarlyLiquidation is the side-effecting second phase. The caller must
// explicitly acknowledge the surplus/deficit risk or the request is rejected.
func (u *Usecase) RequestEarlyLiquidation(ctx context.Context, in ExitRequestInput) (*LoanDTO, error) {
	if !in.RiskAcknowledged {
		return nil, fault.ErrPreconditionNotAcknowledged
	}
	return u.requestExit(ctx, in, domainLoan.StatusPendingEarlyLiquidation, nil)
}

// EstimateEarlyRepayment quotes an early repayment under the full-interest
// policy. Pure and repeatable.
func (u *Usecase) EstimateEarlyRepayment(ctx context.Context, loanID, borrowerID string) (*calc.RepaymentEstimate, error) {
	l, err := u.getOwned(ctx, loanID, borrowerID)
	if err != nil {
		return nil, err
	}
	if l.Status != domainLoan.StatusActive {
		return nil, fault.ErrIllegalStateTransition
	}
	return calc.EstimateRepayment(calc.RepaymentEstimateInput{
		RepaymentTotal:   l.RepaymentTotal,
		RedeliveryAmount: l.RedeliveryAmount,
		MaturityDate:     l.MaturityDate,
		EstimateDate:     time.Now().UTC(),
	})
}

// RequestEarlyRepayment opens the repayment invoice and parks the loan in its
// pending sub-state until the settlement collaborator confirms payment.
func (u *Usecase) RequestEarlyRepayment(ctx context.Context, in ExitRequestInput) (*LoanDTO, error) {
	if !in.RiskAcknowledged {
		return nil, fault.ErrPreconditionNotAcknowledged
	}
	mkInvoice := func(l *domainLoan.Loan, now time.Time) *invoice.Invoice {
		return &invoice.Invoice{
			InvoiceID:  uuid.NewString(),
			Type:       invoice.TypeRepayment,
			CurrencyID: l.PrincipalCurrencyID,
			Amount:     l.RepaymentTotal,
			PaidAmount: "0",
			Status:     invoice.StatusPending,
			ExpiresAt:  now.Add(RepaymentInvoiceValidity),
		}
	}
	return u.requestExit(ctx, in, domainLoan.StatusPendingEarlyRepayment, mkInvoice)
}

func (u *Usecase) requestExit(ctx context.Context, in ExitRequestInput, pending domainLoan.Status, mkInvoice func(*domainLoan.Loan, time.Time) *invoice.Invoice) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, in.LoanID)
		if err != nil {
			return notFoundErr(err)
		}
		if l.BorrowerID != in.BorrowerID {
			return fault.ErrNotFound
		}
		now := time.Now().UTC()
		if err := l.TransitionTo(pending, now); err != nil {
			return err
		}
		l.ExitRequestedAt = &now
		if mkInvoice != nil {
			if err := r.Invoices.Create(ctx, mkInvoice(l, now)); err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// SettleEarlyLiquidation is driven by the settlement collaborator once the
// collateral sale completes; surplusDeficit is the signed realized outcome.
func (u *Usecase) SettleEarlyLiquidation(ctx context.Context, loanID, surplusDeficit string, settledAt time.Time) error {
	return u.settle(ctx, loanID, domainLoan.StatusEarlyLiquidated, &surplusDeficit, settledAt)
}

// SettleEarlyRepayment is driven by the settlement collaborator once the
// repayment invoice is confirmed paid.
func (u *Usecase) SettleEarlyRepayment(ctx context.Context, loanID string, settledAt time.Time) error {
	return u.settle(ctx, loanID, domainLoan.StatusEarlyRepaid, nil, settledAt)
}

func (u *Usecase) settle(ctx context.Context, loanID string, terminal domainLoan.Status, surplusDeficit *string, settledAt time.Time) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return notFoundErr(err)
		}
		if l.Status == terminal {
			return nil // settlement replay
		}
		if err := l.TransitionTo(terminal, settledAt); err != nil {
			return err
		}
		at := settledAt.UTC()
		l.SettledAt = &at
		l.SettledSurplusDeficit = surplusDeficit
		return r.Loans.Save(ctx, l)
	})
}

// MatureDue is the pull-style maturity sweep: active loans past their
// maturity date transition to matured.
func (u *Usecase) MatureDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := u.loans.ListMaturable(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	matured := 0
	for i := range due {
		applied := false
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			l, err := r.Loans.GetByLoanIDForUpdate(ctx, due[i].LoanID)
			if err != nil {
				return err
			}
			if l.Status != domainLoan.StatusActive || l.MaturityDate.After(now) {
				return nil // exited or re-read raced the sweep
			}
			if err := l.TransitionTo(domainLoan.StatusMatured, now); err != nil {
				return err
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			applied = true
			return nil
		})
		if err != nil {
			return matured, err
		}
		if applied {
			matured++
		}
	}
	return matured, nil
}

// MarkDefaulted is an operator action on a delinquent active loan.
func (u *Usecase) MarkDefaulted(ctx context.Context, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return notFoundErr(err)
		}
		if err := l.TransitionTo(domainLoan.StatusDefaulted, time.Now().UTC()); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return toDTO(l), nil
}

func (u *Usecase) ListByBorrower(ctx context.Context, borrowerID string, limit int) ([]LoanDTO, error) {
	rows, err := u.loans.ListByBorrower(ctx, borrowerID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

func (u *Usecase) getOwned(ctx context.Context, loanID, borrowerID string) (*domainLoan.Loan, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, notFoundErr(err)
	}
	if l.BorrowerID != borrowerID {
		return nil, fault.ErrNotFound
	}
	return l, nil
}

func notFoundErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.ErrNotFound
	}
	return err
}

func currencyErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.ErrCurrencyNotSupported
	}
	return err
}
