package uow

import (
	"context"

	"cryptolend-backend/internal/domain/application"
	"cryptolend-backend/internal/domain/invoice"
	"cryptolend-backend/internal/domain/loan"
	"cryptolend-backend/internal/domain/offer"
)

// Repos is the transactional repository bundle. Currency and policy lookups
// are read-only snapshots and stay outside the unit of work.
type Repos struct {
	Offers       offer.Repository
	Applications application.Repository
	Loans        loan.Repository
	Invoices     invoice.Repository
}

type UnitOfWork interface {
	// WithinTx runs fn inside one transaction.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinOfferTx locks the offer row first, then passes it in. Used by
	// matching so concurrent reservations against one offer serialize.
	WithinOfferTx(ctx context.Context, offerID string, fn func(r Repos, o *offer.LoanOffer) error) error
}
