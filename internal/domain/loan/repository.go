package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByBorrower(ctx context.Context, borrowerID string, limit int) ([]Loan, error)
	// ListMaturable returns active loans whose MaturityDate passed before now.
	ListMaturable(ctx context.Context, now time.Time, limit int) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error
}
