package mysql

import (
	"context"

	"gorm.io/gorm"

	currencyDomain "cryptolend-backend/internal/domain/currency"
)

type CurrencyRepository struct{ db *gorm.DB }

func NewCurrencyRepository(db *gorm.DB) *CurrencyRepository { return &CurrencyRepository{db: db} }

func (r *CurrencyRepository) GetByChainToken(ctx context.Context, blockchain, tokenID string) (*currencyDomain.Currency, error) {
	var out currencyDomain.Currency
	res := r.db.WithContext(ctx).
		Where("blockchain = ? AND token_id = ?", blockchain, tokenID).
		First(&out)
	return &out, res.Error
}

func (r *CurrencyRepository) GetByCurrencyID(ctx context.Context, currencyID string) (*currencyDomain.Currency, error) {
	var out currencyDomain.Currency
	res := r.db.WithContext(ctx).
		Where("currency_id = ?", currencyID).
		First(&out)
	return &out, res.Error
}

func (r *CurrencyRepository) GetLatestRate(ctx context.Context, baseCurrencyID, quoteCurrencyID string) (*currencyDomain.ExchangeRate, error) {
	var out currencyDomain.ExchangeRate
	res := r.db.WithContext(ctx).
		Where("base_currency_id = ? AND quote_currency_id = ?", baseCurrencyID, quoteCurrencyID).
		Order("source_date DESC, id DESC").
		First(&out)
	return &out, res.Error
}
