package currencymock

import (
	"context"

	domain "cryptolend-backend/internal/domain/currency"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByChainTokenFn func(ctx context.Context, blockchain, tokenID string) (*domain.Currency, error)
	GetByCurrencyIDFn func(ctx context.Context, currencyID string) (*domain.Currency, error)
	GetLatestRateFn   func(ctx context.Context, baseCurrencyID, quoteCurrencyID string) (*domain.ExchangeRate, error)
}

func (m *Repo) GetByChainToken(ctx context.Context, blockchain, tokenID string) (*domain.Currency, error) {
	if m.GetByChainTokenFn != nil {
		return m.GetByChainTokenFn(ctx, blockchain, tokenID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByCurrencyID(ctx context.Context, currencyID string) (*domain.Currency, error) {
	if m.GetByCurrencyIDFn != nil {
		return m.GetByCurrencyIDFn(ctx, currencyID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetLatestRate(ctx context.Context, baseCurrencyID, quoteCurrencyID string) (*domain.ExchangeRate, error) {
	if m.GetLatestRateFn != nil {
		return m.GetLatestRateFn(ctx, baseCurrencyID, quoteCurrencyID)
	}
	return nil, context.Canceled
}
