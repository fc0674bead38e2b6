package mysql

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	invoiceDomain "cryptolend-backend/internal/domain/invoice"
)

func openInvoiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&invoiceDomain.Invoice{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestInvoiceCreateGetSave(t *testing.T) {
	db := openInvoiceTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := &invoiceDomain.Invoice{
		InvoiceID:  "f6a7f0a0-0000-4000-8000-000000000001",
		Type:       invoiceDomain.TypeFunding,
		CurrencyID: "cur-usdt",
		Amount:     "50000000000",
		PaidAmount: "0",
		Status:     invoiceDomain.StatusPending,
		ExpiresAt:  time.Now().UTC().Add(24 * time.Hour),
	}
	if err := repo.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByInvoiceID(ctx, inv.InvoiceID)
	if err != nil {
		t.Fatalf("GetByInvoiceID: %v", err)
	}
	if got.Type != invoiceDomain.TypeFunding || got.Amount != "50000000000" {
		t.Errorf("unexpected invoice: %+v", got)
	}

	paidAt := time.Now().UTC()
	got.PaidAmount = got.Amount
	got.Status = invoiceDomain.StatusPaid
	got.PaidAt = &paidAt
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := repo.GetByInvoiceID(ctx, inv.InvoiceID)
	if err != nil {
		t.Fatalf("GetByInvoiceID: %v", err)
	}
	if again.Status != invoiceDomain.StatusPaid || again.PaidAt == nil {
		t.Errorf("payment not persisted: %+v", again)
	}
}
