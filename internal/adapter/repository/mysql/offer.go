package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	offerDomain "cryptolend-backend/internal/domain/offer"
)

type OfferRepository struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) *OfferRepository { return &OfferRepository{db: db} }

func (r *OfferRepository) Create(ctx context.Context, o *offerDomain.LoanOffer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepository) Save(ctx context.Context, o *offerDomain.LoanOffer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OfferRepository) GetByOfferID(ctx context.Context, offerID string) (*offerDomain.LoanOffer, error) {
	var out offerDomain.LoanOffer
	res := r.db.WithContext(ctx).Where("offer_id = ?", offerID).First(&out)
	return &out, res.Error
}

// GetByOfferIDForUpdate takes a row lock; only meaningful inside a transaction.
func (r *OfferRepository) GetByOfferIDForUpdate(ctx context.Context, offerID string) (*offerDomain.LoanOffer, error) {
	var out offerDomain.LoanOffer
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("offer_id = ?", offerID).
		First(&out)
	return &out, res.Error
}

func (r *OfferRepository) GetByFundingInvoiceID(ctx context.Context, invoiceID string) (*offerDomain.LoanOffer, error) {
	var out offerDomain.LoanOffer
	res := r.db.WithContext(ctx).Where("funding_invoice_id = ?", invoiceID).First(&out)
	return &out, res.Error
}

func (r *OfferRepository) ListPublished(ctx context.Context, limit int) ([]offerDomain.LoanOffer, error) {
	var out []offerDomain.LoanOffer
	q := r.db.WithContext(ctx).
		Where("status = ?", offerDomain.StatusPublished).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *OfferRepository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]offerDomain.LoanOffer, error) {
	var out []offerDomain.LoanOffer
	q := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at <= ?",
			[]offerDomain.Status{offerDomain.StatusFunding, offerDomain.StatusPublished}, now).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
