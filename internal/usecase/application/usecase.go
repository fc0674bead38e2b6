package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cryptolend-backend/internal/calc"
	domainApp "cryptolend-backend/internal/domain/application"
	"cryptolend-backend/internal/domain/currency"
	"cryptolend-backend/internal/domain/fault"
	"cryptolend-backend/internal/domain/invoice"
	domainLoan "cryptolend-backend/internal/domain/loan"
	domainOffer "cryptolend-backend/internal/domain/offer"
	"cryptolend-backend/internal/domain/policy"
	"cryptolend-backend/internal/domain/uow"
	"cryptolend-backend/pkg/id"
)

// DepositValidity is how long a collateral-deposit invoice stays payable.
const DepositValidity = 30 * 24 * time.Hour

type Usecase struct {
	apps       domainApp.Repository
	offers     domainOffer.Repository
	currencies currency.Repository
	policies   policy.Repository
	uow        uow.UnitOfWork
}

func NewUsecase(apps domainApp.Repository, offers domainOffer.Repository, currencies currency.Repository, policies policy.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{apps: apps, offers: offers, currencies: currencies, policies: policies, uow: tx}
}

// Create sizes the borrower's application against a published offer using the
// same requirement calculation the offer side uses, then persists it pending
// collateral together with its deposit invoice.
func (u *Usecase) Create(ctx context.Context, in CreateApplicationInput) (*ApplicationDTO, error) {
	o, err := u.offers.GetByOfferID(ctx, in.OfferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}
	now := time.Now().UTC()
	if o.Status != domainOffer.StatusPublished || !o.ExpiresAt.After(now) {
		return nil, fault.ErrIllegalStateTransition
	}
	if !o.AllowsTerm(in.TermMonths) {
		return nil, fmt.Errorf("%w: term %d not offered", fault.ErrRateOutOfPolicyBounds, in.TermMonths)
	}

	principalCur, err := u.currencies.GetByCurrencyID(ctx, o.PrincipalCurrencyID)
	if err != nil {
		return nil, currencyErr(err)
	}
	collateralCur, err := u.currencies.GetByCurrencyID(ctx, o.CollateralCurrencyID)
	if err != nil {
		return nil, currencyErr(err)
	}

	principal, err := calc.ToSmallestUnit(in.PrincipalAmount, principalCur.Decimals)
	if err != nil {
		return nil, err
	}
	if err := withinOfferBounds(principal, o); err != nil {
		return nil, err
	}

	pol, err := u.policies.LatestEffective(ctx, now)
	if err != nil {
		return nil, err
	}
	xr, err := u.currencies.GetLatestRate(ctx, collateralCur.CurrencyID, principalCur.CurrencyID)
	if err != nil {
		return nil, currencyErr(err)
	}

	req, err := calc.Requirement(calc.RequirementInput{
		PrincipalAmount:    principal,
		PrincipalDecimals:  principalCur.Decimals,
		CollateralDecimals: collateralCur.Decimals,
		ProvisionRate:      pol.ProvisionRate,
		MinLtvRatio:        pol.MinLtvRatio,
		MaxLtvRatio:        pol.MaxLtvRatio,
		BidPrice:           xr.BidPrice,
		RateID:             xr.RateID,
		RateDate:           xr.SourceDate,
		TermMonths:         in.TermMonths,
		CalculationDate:    now,
	})
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		InvoiceID:  uuid.NewString(),
		Type:       invoice.TypeCollateralDeposit,
		CurrencyID: collateralCur.CurrencyID,
		Amount:     req.RequiredCollateralAmount,
		PaidAmount: "0",
		Status:     invoice.StatusPending,
		ExpiresAt:  req.ExpirationDate,
	}
	a := &domainApp.LoanApplication{
		ApplicationID:           id.NewID32(),
		BorrowerID:              in.BorrowerID,
		OfferID:                 o.OfferID,
		PrincipalCurrencyID:     principalCur.CurrencyID,
		CollateralCurrencyID:    collateralCur.CurrencyID,
		PrincipalAmount:         principal,
		CollateralDepositAmount: req.RequiredCollateralAmount,
		ProvisionAmount:         req.ProvisionAmount,
		MinLtvRatio:             req.MinLtvRatio,
		MaxLtvRatio:             req.MaxLtvRatio,
		AppliedRateID:           req.RateID,
		TermMonths:              in.TermMonths,
		DepositInvoiceID:        inv.InvoiceID,
		Status:                  domainApp.StatusPendingCollateral,
		ApplicationDate:         now,
		StatusUpdatedAt:         now,
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		return r.Applications.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(a, inv), nil
}

// Cancel is borrower-initiated and only legal while pending collateral. A
// second cancel on a terminal application fails with an illegal-transition
// error rather than silently succeeding.
func (u *Usecase) Cancel(ctx context.Context, applicationID, borrowerID, reason string) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.ErrNotFound
			}
			return err
		}
		if a.BorrowerID != borrowerID {
			return fault.ErrNotFound
		}
		if err := a.Cancel(reason, time.Now().UTC()); err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(a, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// List returns the borrower's applications, most recent first, optionally
// filtered by status.
func (u *Usecase) List(ctx context.Context, borrowerID, status string, limit int) ([]ApplicationDTO, error) {
	rows, err := u.apps.List(ctx, domainApp.ListFilter{
		BorrowerID: borrowerID,
		Status:     domainApp.Status(status),
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ApplicationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i], nil))
	}
	return out, nil
}

// HandleDepositInvoicePaid reacts to the collateral arriving: it matches the
// application against its offer and originates the loan, all in one
// transaction with the offer row locked. Replays on an already-matched
// application are no-ops; a reservation that would overdraw the offer's
// availability loses with fault.ErrInsufficientAvailability.
func (u *Usecase) HandleDepositInvoicePaid(ctx context.Context, in InvoicePaidEvent) error {
	a, err := u.apps.GetByDepositInvoiceID(ctx, in.InvoiceID)
	if err != nil {
		return err
	}

	principalCur, err := u.currencies.GetByCurrencyID(ctx, a.PrincipalCurrencyID)
	if err != nil {
		return currencyErr(err)
	}
	collateralCur, err := u.currencies.GetByCurrencyID(ctx, a.CollateralCurrencyID)
	if err != nil {
		return currencyErr(err)
	}

	now := time.Now().UTC()
	pol, err := u.policies.LatestEffective(ctx, now)
	if err != nil {
		return err
	}
	xr, err := u.currencies.GetLatestRate(ctx, collateralCur.CurrencyID, principalCur.CurrencyID)
	if err != nil {
		return currencyErr(err)
	}

	return u.uow.WithinOfferTx(ctx, a.OfferID, func(r uow.Repos, o *domainOffer.LoanOffer) error {
		app, err := r.Applications.GetByApplicationIDForUpdate(ctx, a.ApplicationID)
		if err != nil {
			return err
		}
		if app.Status != domainApp.StatusPendingCollateral {
			// Replayed event after the match already happened.
			return nil
		}

		inv, err := r.Invoices.GetByInvoiceID(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		paid, err := decimal.NewFromString(in.PaidAmount)
		if err != nil {
			return err
		}
		required, err := decimal.NewFromString(inv.Amount)
		if err != nil {
			return err
		}

		paidAt := in.PaidAt.UTC()
		inv.PaidAmount = paid.String()
		if paid.GreaterThanOrEqual(required) {
			inv.Status = invoice.StatusPaid
			inv.PaidAt = &paidAt
		} else {
			inv.Status = invoice.StatusPartiallyPaid
		}
		if err := r.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		if paid.LessThan(required) {
			// Hold until the deposit completes; no matching against a
			// partially funded collateral invoice.
			return nil
		}

		if err := o.Reserve(app.PrincipalAmount); err != nil {
			return err
		}
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}

		if err := app.TransitionTo(domainApp.StatusMatched, now); err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, app); err != nil {
			return err
		}

		l, err := originateLoan(app, o, pol, xr, collateralCur.Decimals, principalCur.Decimals, now)
		if err != nil {
			return err
		}
		return r.Loans.Create(ctx, l)
	})
}

// originateLoan prices the matched pair through the origination calculator
// and assembles the draft loan record.
func originateLoan(app *domainApp.LoanApplication, o *domainOffer.LoanOffer, pol *policy.RiskPolicy, xr *currency.ExchangeRate, collateralDecimals, principalDecimals uint32, now time.Time) (*domainLoan.Loan, error) {
	valuation, ltv, err := valueCollateral(app, xr, collateralDecimals, principalDecimals)
	if err != nil {
		return nil, err
	}
	sched, err := calc.Originate(calc.OriginationInput{
		PrincipalAmount:     app.PrincipalAmount,
		InterestRate:        o.InterestRate,
		TermMonths:          app.TermMonths,
		CollateralAmount:    app.CollateralDepositAmount,
		LtvRatio:            ltv,
		CollateralValuation: valuation,
		ProvisionRate:       pol.ProvisionRate,
		LiquidationFeeRate:  pol.LiquidationFeeRate,
		RedeliveryFeeRate:   pol.RedeliveryFeeRate,
		OriginationDate:     now,
	})
	if err != nil {
		return nil, err
	}
	return &domainLoan.Loan{
		LoanID:                 id.NewID32(),
		OfferID:                o.OfferID,
		ApplicationID:          app.ApplicationID,
		LenderID:               o.LenderID,
		BorrowerID:             app.BorrowerID,
		PrincipalCurrencyID:    app.PrincipalCurrencyID,
		CollateralCurrencyID:   app.CollateralCurrencyID,
		PrincipalAmount:        app.PrincipalAmount,
		InterestRate:           o.InterestRate,
		TermMonths:             app.TermMonths,
		InterestAmount:         sched.InterestAmount,
		ProvisionAmount:        sched.ProvisionAmount,
		LiquidationFee:         sched.LiquidationFee,
		RepaymentTotal:         sched.RepaymentTotal,
		RedeliveryFee:          sched.RedeliveryFee,
		RedeliveryAmount:       sched.RedeliveryAmount,
		MinCollateralValuation: sched.MinCollateralValuation,
		CollateralAmount:       app.CollateralDepositAmount,
		LtvRatio:               ltv,
		MarginCallLtv:          sched.MarginCallLtv,
		OriginationDate:        now,
		MaturityDate:           sched.MaturityDate,
		Status:                 domainLoan.StatusDraft,
		StatusUpdatedAt:        now,
	}, nil
}

// valueCollateral prices the deposited collateral in principal smallest units
// (floored) and derives the matched LTV from it.
func valueCollateral(app *domainApp.LoanApplication, xr *currency.ExchangeRate, collateralDecimals, principalDecimals uint32) (string, decimal.Decimal, error) {
	collateral, err := decimal.NewFromString(app.CollateralDepositAmount)
	if err != nil {
		return "", decimal.Zero, err
	}
	bid, err := decimal.NewFromString(xr.BidPrice)
	if err != nil {
		return "", decimal.Zero, err
	}
	rate := bid.Shift(-calc.RateScale)
	valuation := collateral.Shift(-int32(collateralDecimals)).
		Mul(rate).
		Shift(int32(principalDecimals)).
		Floor()
	if !valuation.IsPositive() {
		return "", decimal.Zero, fmt.Errorf("%w: collateral valuation is zero", fault.ErrRateOutOfPolicyBounds)
	}
	principal, err := decimal.NewFromString(app.PrincipalAmount)
	if err != nil {
		return "", decimal.Zero, err
	}
	return valuation.String(), principal.Div(valuation), nil
}

func withinOfferBounds(principal string, o *domainOffer.LoanOffer) error {
	p, err := decimal.NewFromString(principal)
	if err != nil {
		return err
	}
	min, err := decimal.NewFromString(o.MinLoanAmount)
	if err != nil {
		return err
	}
	max, err := decimal.NewFromString(o.MaxLoanAmount)
	if err != nil {
		return err
	}
	if p.LessThan(min) || p.GreaterThan(max) {
		return fmt.Errorf("%w: principal %s outside offer bounds [%s,%s]",
			fault.ErrRateOutOfPolicyBounds, p, min, max)
	}
	return nil
}

func currencyErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.ErrCurrencyNotSupported
	}
	return err
}
