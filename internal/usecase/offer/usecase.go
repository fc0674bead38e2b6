package offer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cryptolend-backend/internal/calc"
	"cryptolend-backend/internal/domain/currency"
	"cryptolend-backend/internal/domain/fault"
	"cryptolend-backend/internal/domain/invoice"
	domainOffer "cryptolend-backend/internal/domain/offer"
	"cryptolend-backend/internal/domain/policy"
	"cryptolend-backend/internal/domain/uow"
	"cryptolend-backend/pkg/id"
)

// DefaultOfferValidity bounds how long an unfilled offer stays matchable.
const DefaultOfferValidity = 30 * 24 * time.Hour

type Usecase struct {
	offers     domainOffer.Repository
	currencies currency.Repository
	policies   policy.Repository
	uow        uow.UnitOfWork
}

func NewUsecase(offers domainOffer.Repository, currencies currency.Repository, policies policy.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{offers: offers, currencies: currencies, policies: policies, uow: tx}
}

// Create validates the offer against the current risk policy, sizes its
// economics with the conversion-aware calculation, and persists the offer in
// funding state together with its funding invoice.
func (u *Usecase) Create(ctx context.Context, in CreateOfferInput) (*OfferDTO, error) {
	principalCur, err := u.currencies.GetByChainToken(ctx, in.PrincipalBlockchain, in.PrincipalTokenID)
	if err != nil {
		return nil, currencyErr(err)
	}
	collateralCur, err := u.currencies.GetByChainToken(ctx, in.CollateralBlockchain, in.CollateralTokenID)
	if err != nil {
		return nil, currencyErr(err)
	}

	now := time.Now().UTC()
	pol, err := u.policies.LatestEffective(ctx, now)
	if err != nil {
		return nil, err
	}

	rate, err := decimal.NewFromString(in.InterestRate)
	if err != nil {
		return nil, fmt.Errorf("%w: interest rate %q", fault.ErrRateOutOfPolicyBounds, in.InterestRate)
	}
	if rate.LessThan(pol.MinInterestRate) || rate.GreaterThan(pol.MaxInterestRate) {
		return nil, fmt.Errorf("%w: interest rate %s outside [%s,%s]",
			fault.ErrRateOutOfPolicyBounds, rate, pol.MinInterestRate, pol.MaxInterestRate)
	}

	offered, err := calc.ToSmallestUnit(in.OfferedAmount, principalCur.Decimals)
	if err != nil {
		return nil, err
	}
	if err := checkAmountBounds(offered, pol); err != nil {
		return nil, err
	}

	minAmount, maxAmount, err := loanBounds(in, offered, principalCur.Decimals)
	if err != nil {
		return nil, err
	}

	xr, err := u.currencies.GetLatestRate(ctx, collateralCur.CurrencyID, principalCur.CurrencyID)
	if err != nil {
		return nil, currencyErr(err)
	}
	req, err := calc.Requirement(calc.RequirementInput{
		PrincipalAmount:    offered,
		PrincipalDecimals:  principalCur.Decimals,
		CollateralDecimals: collateralCur.Decimals,
		ProvisionRate:      pol.ProvisionRate,
		MinLtvRatio:        pol.MinLtvRatio,
		MaxLtvRatio:        pol.MaxLtvRatio,
		BidPrice:           xr.BidPrice,
		RateID:             xr.RateID,
		RateDate:           xr.SourceDate,
		CalculationDate:    now,
	})
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(DefaultOfferValidity)
	if in.ExpiresAt != nil {
		expiresAt = in.ExpiresAt.UTC()
	}

	inv := &invoice.Invoice{
		InvoiceID:  uuid.NewString(),
		Type:       invoice.TypeFunding,
		CurrencyID: principalCur.CurrencyID,
		Amount:     offered,
		PaidAmount: "0",
		Status:     invoice.StatusPending,
		ExpiresAt:  expiresAt,
	}
	o := &domainOffer.LoanOffer{
		OfferID:              id.NewID32(),
		LenderID:             in.LenderID,
		PrincipalCurrencyID:  principalCur.CurrencyID,
		CollateralCurrencyID: collateralCur.CurrencyID,
		OfferedAmount:        offered,
		AvailableAmount:      offered,
		MinLoanAmount:        minAmount,
		MaxLoanAmount:        maxAmount,
		InterestRate:         rate,
		TermOptions:          in.TermOptions,
		FundingInvoiceID:     inv.InvoiceID,
		Status:               domainOffer.StatusFunding,
		ExpiresAt:            expiresAt,
		StatusUpdatedAt:      now,
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		return r.Offers.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(o, inv, req), nil
}

// HandleFundingInvoicePaid reacts to a payment-subsystem event. Replays are
// no-ops: an already-published offer stays published and the call succeeds.
func (u *Usecase) HandleFundingInvoicePaid(ctx context.Context, in InvoicePaidEvent) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		inv, err := r.Invoices.GetByInvoiceID(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		o, err := r.Offers.GetByFundingInvoiceID(ctx, inv.InvoiceID)
		if err != nil {
			return err
		}
		if o.Status != domainOffer.StatusFunding {
			// Replay or late event after close/expiry: nothing to do.
			return nil
		}

		paid, err := decimal.NewFromString(in.PaidAmount)
		if err != nil {
			return err
		}
		offered, err := decimal.NewFromString(o.OfferedAmount)
		if err != nil {
			return err
		}

		paidAt := in.PaidAt.UTC()
		inv.PaidAmount = paid.String()
		if paid.GreaterThanOrEqual(offered) {
			inv.Status = invoice.StatusPaid
			inv.PaidAt = &paidAt
		} else {
			inv.Status = invoice.StatusPartiallyPaid
		}
		if err := r.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		if paid.LessThan(offered) {
			return nil
		}
		if err := o.TransitionTo(domainOffer.StatusPublished, paidAt); err != nil {
			return err
		}
		return r.Offers.Save(ctx, o)
	})
}

// Close is the lender's explicit closure, with an optional reason.
func (u *Usecase) Close(ctx context.Context, offerID, lenderID string, reason string) (*OfferDTO, error) {
	var dto *OfferDTO
	err := u.uow.WithinOfferTx(ctx, offerID, func(r uow.Repos, o *domainOffer.LoanOffer) error {
		if o.LenderID != lenderID {
			return fault.ErrNotFound
		}
		if err := o.TransitionTo(domainOffer.StatusClosed, time.Now().UTC()); err != nil {
			return err
		}
		if reason != "" {
			o.CloseReason = &reason
		}
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		dto = toDTO(o, nil, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ExpireDue is the pull-style passive-expiry sweep. It returns how many
// offers it expired so the caller can log progress.
func (u *Usecase) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := u.offers.ListExpirable(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range due {
		applied := false
		err := u.uow.WithinOfferTx(ctx, due[i].OfferID, func(r uow.Repos, o *domainOffer.LoanOffer) error {
			if o.Status.Terminal() || o.ExpiresAt.After(now) {
				return nil // closed or extended concurrently
			}
			if err := o.TransitionTo(domainOffer.StatusExpired, now); err != nil {
				return err
			}
			if err := r.Offers.Save(ctx, o); err != nil {
				return err
			}
			applied = true
			return nil
		})
		if err != nil {
			return expired, err
		}
		if applied {
			expired++
		}
	}
	return expired, nil
}

func (u *Usecase) Get(ctx context.Context, offerID string) (*OfferDTO, error) {
	o, err := u.offers.GetByOfferID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}
	return toDTO(o, nil, nil), nil
}

func (u *Usecase) ListPublished(ctx context.Context, limit int) ([]OfferDTO, error) {
	rows, err := u.offers.ListPublished(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i], nil, nil))
	}
	return out, nil
}

// ---- helpers ----

func currencyErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.ErrCurrencyNotSupported
	}
	return err
}

func checkAmountBounds(amount string, pol *policy.RiskPolicy) error {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	min, err := decimal.NewFromString(pol.MinLoanAmount)
	if err != nil {
		return err
	}
	max, err := decimal.NewFromString(pol.MaxLoanAmount)
	if err != nil {
		return err
	}
	if a.LessThan(min) || a.GreaterThan(max) {
		return fmt.Errorf("%w: amount %s outside [%s,%s]",
			fault.ErrRateOutOfPolicyBounds, a, min, max)
	}
	return nil
}

// loanBounds converts the caller's per-loan bounds, defaulting to
// [offered/10, offered] when absent.
func loanBounds(in CreateOfferInput, offered string, decimals uint32) (string, string, error) {
	offeredDec, err := decimal.NewFromString(offered)
	if err != nil {
		return "", "", err
	}
	minAmount := offeredDec.Div(decimal.NewFromInt(10)).Floor().String()
	maxAmount := offered
	if in.MinLoanAmount != "" {
		if minAmount, err = calc.ToSmallestUnit(in.MinLoanAmount, decimals); err != nil {
			return "", "", err
		}
	}
	if in.MaxLoanAmount != "" {
		if maxAmount, err = calc.ToSmallestUnit(in.MaxLoanAmount, decimals); err != nil {
			return "", "", err
		}
	}

	minDec, err := decimal.NewFromString(minAmount)
	if err != nil {
		return "", "", err
	}
	maxDec, err := decimal.NewFromString(maxAmount)
	if err != nil {
		return "", "", err
	}
	if !minDec.IsPositive() || minDec.GreaterThan(maxDec) || maxDec.GreaterThan(offeredDec) {
		return "", "", fmt.Errorf("%w: loan bounds [%s,%s] invalid against offered %s",
			fault.ErrRateOutOfPolicyBounds, minAmount, maxAmount, offered)
	}
	return minAmount, maxAmount, nil
}
