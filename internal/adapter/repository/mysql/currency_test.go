package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	currencyDomain "cryptolend-backend/internal/domain/currency"
)

func openCurrencyTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Currency tables carry no enum columns; the domain models migrate as-is.
	if err := db.AutoMigrate(&currencyDomain.Currency{}, &currencyDomain.ExchangeRate{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestCurrencyLookups(t *testing.T) {
	db := openCurrencyTestDB(t)
	repo := NewCurrencyRepository(db)
	ctx := context.Background()

	rows := []*currencyDomain.Currency{
		{CurrencyID: "cur-usdt", Blockchain: "ethereum", TokenID: "usdt", Symbol: "USDT", Decimals: 6},
		{CurrencyID: "cur-wbtc", Blockchain: "ethereum", TokenID: "wbtc", Symbol: "WBTC", Decimals: 8},
	}
	for _, c := range rows {
		if err := db.Create(c).Error; err != nil {
			t.Fatalf("seed %s: %v", c.CurrencyID, err)
		}
	}

	got, err := repo.GetByChainToken(ctx, "ethereum", "wbtc")
	if err != nil {
		t.Fatalf("GetByChainToken: %v", err)
	}
	if got.CurrencyID != "cur-wbtc" || got.Decimals != 8 {
		t.Errorf("unexpected currency: %+v", got)
	}

	byID, err := repo.GetByCurrencyID(ctx, "cur-usdt")
	if err != nil {
		t.Fatalf("GetByCurrencyID: %v", err)
	}
	if byID.Symbol != "USDT" {
		t.Errorf("unexpected currency: %+v", byID)
	}

	if _, err := repo.GetByChainToken(ctx, "ethereum", "doge"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown token: want ErrRecordNotFound, got %v", err)
	}
}

func TestGetLatestRate(t *testing.T) {
	db := openCurrencyTestDB(t)
	repo := NewCurrencyRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rates := []*currencyDomain.ExchangeRate{
		{RateID: "rate-old", BaseCurrencyID: "cur-wbtc", QuoteCurrencyID: "cur-usdt",
			BidPrice: "59000000000000000000000", AskPrice: "59100000000000000000000", SourceDate: base},
		{RateID: "rate-new", BaseCurrencyID: "cur-wbtc", QuoteCurrencyID: "cur-usdt",
			BidPrice: "60000000000000000000000", AskPrice: "60100000000000000000000", SourceDate: base.Add(time.Hour)},
		{RateID: "rate-other-pair", BaseCurrencyID: "cur-eth", QuoteCurrencyID: "cur-usdt",
			BidPrice: "2000000000000000000000", AskPrice: "2010000000000000000000", SourceDate: base.Add(2 * time.Hour)},
	}
	for _, xr := range rates {
		if err := db.Create(xr).Error; err != nil {
			t.Fatalf("seed %s: %v", xr.RateID, err)
		}
	}

	got, err := repo.GetLatestRate(ctx, "cur-wbtc", "cur-usdt")
	if err != nil {
		t.Fatalf("GetLatestRate: %v", err)
	}
	if got.RateID != "rate-new" {
		t.Errorf("rate = %s, want the most recent observation", got.RateID)
	}
}
