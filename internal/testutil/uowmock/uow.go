package uowmock

import (
	"context"
	"errors"

	"cryptolend-backend/internal/domain/offer"
	"cryptolend-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn      func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinOfferTxFn func(ctx context.Context, offerID string, fn func(r uow.Repos, o *offer.LoanOffer) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough builds a UoW that hands fn the given bundle with no
// transaction, which is what most usecase tests want.
func Passthrough(r uow.Repos, lockOffer func(ctx context.Context, offerID string) (*offer.LoanOffer, error)) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return fn(r)
		},
		WithinOfferTxFn: func(ctx context.Context, offerID string, fn func(r uow.Repos, o *offer.LoanOffer) error) error {
			if lockOffer == nil {
				return errUnimplemented
			}
			o, err := lockOffer(ctx, offerID)
			if err != nil {
				return err
			}
			return fn(r, o)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinOfferTx(ctx context.Context, offerID string, fn func(r uow.Repos, o *offer.LoanOffer) error) error {
	if m.WithinOfferTxFn != nil {
		return m.WithinOfferTxFn(ctx, offerID, fn)
	}
	return errUnimplemented
}
