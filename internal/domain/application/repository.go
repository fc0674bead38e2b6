package application

import "context"

type ListFilter struct {
	BorrowerID string
	// Status filters when non-empty.
	Status Status
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, a *LoanApplication) error
	GetByApplicationID(ctx context.Context, applicationID string) (*LoanApplication, error)
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*LoanApplication, error)
	GetByDepositInvoiceID(ctx context.Context, invoiceID string) (*LoanApplication, error)
	// List returns applications ordered by application date, most recent first.
	List(ctx context.Context, f ListFilter) ([]LoanApplication, error)
	Save(ctx context.Context, a *LoanApplication) error
}
