package offer

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, o *LoanOffer) error
	GetByOfferID(ctx context.Context, offerID string) (*LoanOffer, error)
	// GetByOfferIDForUpdate row-locks the offer for a transactional transition.
	GetByOfferIDForUpdate(ctx context.Context, offerID string) (*LoanOffer, error)
	GetByFundingInvoiceID(ctx context.Context, invoiceID string) (*LoanOffer, error)
	ListPublished(ctx context.Context, limit int) ([]LoanOffer, error)
	// ListExpirable returns non-terminal offers whose ExpiresAt passed before now.
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]LoanOffer, error)
	Save(ctx context.Context, o *LoanOffer) error
}
