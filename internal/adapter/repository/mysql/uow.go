package mysql

import (
	"context"

	"gorm.io/gorm"

	"cryptolend-backend/internal/domain/offer"
	"cryptolend-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func txRepos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Offers:       &OfferRepository{db: tx},
		Applications: &ApplicationRepository{db: tx},
		Loans:        &LoanRepository{db: tx},
		Invoices:     &InvoiceRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepos(tx))
	})
}

func (u *GormUoW) WithinOfferTx(ctx context.Context, offerID string, fn func(r uow.Repos, o *offer.LoanOffer) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := txRepos(tx)
		// lock the offer row up-front so concurrent matches serialize
		o, err := r.Offers.GetByOfferIDForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		return fn(r, o)
	})
}
