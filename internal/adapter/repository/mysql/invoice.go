package mysql

import (
	"context"

	"gorm.io/gorm"

	invoiceDomain "cryptolend-backend/internal/domain/invoice"
)

type InvoiceRepository struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository { return &InvoiceRepository{db: db} }

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoiceDomain.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*invoiceDomain.Invoice, error) {
	var out invoiceDomain.Invoice
	res := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&out)
	return &out, res.Error
}

func (r *InvoiceRepository) Save(ctx context.Context, inv *invoiceDomain.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}
