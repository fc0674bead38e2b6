package invoice

import "context"

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*Invoice, error)
	Save(ctx context.Context, inv *Invoice) error
}
