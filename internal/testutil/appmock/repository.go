package appmock

import (
	"context"

	domain "cryptolend-backend/internal/domain/application"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.LoanApplication) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByDepositInvoiceIDFn       func(ctx context.Context, invoiceID string) (*domain.LoanApplication, error)
	ListFn                        func(ctx context.Context, f domain.ListFilter) ([]domain.LoanApplication, error)
	SaveFn                        func(ctx context.Context, a *domain.LoanApplication) error
}

func (m *Repo) Create(ctx context.Context, a *domain.LoanApplication) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByDepositInvoiceID(ctx context.Context, invoiceID string) (*domain.LoanApplication, error) {
	if m.GetByDepositInvoiceIDFn != nil {
		return m.GetByDepositInvoiceIDFn(ctx, invoiceID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.LoanApplication, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, a *domain.LoanApplication) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}
