package invoicemock

import (
	"context"

	domain "cryptolend-backend/internal/domain/invoice"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn         func(ctx context.Context, inv *domain.Invoice) error
	GetByInvoiceIDFn func(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	SaveFn           func(ctx context.Context, inv *domain.Invoice) error
}

func (m *Repo) Create(ctx context.Context, inv *domain.Invoice) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, inv)
	}
	return nil
}

func (m *Repo) GetByInvoiceID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	if m.GetByInvoiceIDFn != nil {
		return m.GetByInvoiceIDFn(ctx, invoiceID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, inv *domain.Invoice) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, inv)
	}
	return nil
}
