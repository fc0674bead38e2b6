package loanmock

import (
	"context"
	"time"

	domain "cryptolend-backend/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByBorrowerFn       func(ctx context.Context, borrowerID string, limit int) ([]domain.Loan, error)
	ListMaturableFn        func(ctx context.Context, now time.Time, limit int) ([]domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByBorrower(ctx context.Context, borrowerID string, limit int) ([]domain.Loan, error) {
	if m.ListByBorrowerFn != nil {
		return m.ListByBorrowerFn(ctx, borrowerID, limit)
	}
	return nil, nil
}

func (m *Repo) ListMaturable(ctx context.Context, now time.Time, limit int) ([]domain.Loan, error) {
	if m.ListMaturableFn != nil {
		return m.ListMaturableFn(ctx, now, limit)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
