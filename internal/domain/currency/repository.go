package currency

import "context"

// Repository is the read-side lookup the calculators' callers use. Currency
// and rate rows are maintained by the external price-feed collaborator.
type Repository interface {
	GetByChainToken(ctx context.Context, blockchain, tokenID string) (*Currency, error)
	GetByCurrencyID(ctx context.Context, currencyID string) (*Currency, error)
	// GetLatestRate returns the most recent observation for the pair.
	GetLatestRate(ctx context.Context, baseCurrencyID, quoteCurrencyID string) (*ExchangeRate, error)
}
