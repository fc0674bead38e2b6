package offermock

import (
	"context"
	"time"

	domain "cryptolend-backend/internal/domain/offer"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn                func(ctx context.Context, o *domain.LoanOffer) error
	GetByOfferIDFn          func(ctx context.Context, offerID string) (*domain.LoanOffer, error)
	GetByOfferIDForUpdateFn func(ctx context.Context, offerID string) (*domain.LoanOffer, error)
	GetByFundingInvoiceIDFn func(ctx context.Context, invoiceID string) (*domain.LoanOffer, error)
	ListPublishedFn         func(ctx context.Context, limit int) ([]domain.LoanOffer, error)
	ListExpirableFn         func(ctx context.Context, now time.Time, limit int) ([]domain.LoanOffer, error)
	SaveFn                  func(ctx context.Context, o *domain.LoanOffer) error
}

func (m *Repo) Create(ctx context.Context, o *domain.LoanOffer) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, o)
	}
	return nil
}

func (m *Repo) GetByOfferID(ctx context.Context, offerID string) (*domain.LoanOffer, error) {
	if m.GetByOfferIDFn != nil {
		return m.GetByOfferIDFn(ctx, offerID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByOfferIDForUpdate(ctx context.Context, offerID string) (*domain.LoanOffer, error) {
	if m.GetByOfferIDForUpdateFn != nil {
		return m.GetByOfferIDForUpdateFn(ctx, offerID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByFundingInvoiceID(ctx context.Context, invoiceID string) (*domain.LoanOffer, error) {
	if m.GetByFundingInvoiceIDFn != nil {
		return m.GetByFundingInvoiceIDFn(ctx, invoiceID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListPublished(ctx context.Context, limit int) ([]domain.LoanOffer, error) {
	if m.ListPublishedFn != nil {
		return m.ListPublishedFn(ctx, limit)
	}
	return nil, nil
}

func (m *Repo) ListExpirable(ctx context.Context, now time.Time, limit int) ([]domain.LoanOffer, error) {
	if m.ListExpirableFn != nil {
		return m.ListExpirableFn(ctx, now, limit)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, o *domain.LoanOffer) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, o)
	}
	return nil
}
