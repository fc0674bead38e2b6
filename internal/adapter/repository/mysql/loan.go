package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "cryptolend-backend/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListByBorrower(ctx context.Context, borrowerID string, limit int) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	q := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("origination_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *LoanRepository) ListMaturable(ctx context.Context, now time.Time, limit int) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	q := r.db.WithContext(ctx).
		Where("status = ? AND maturity_date <= ?", loanDomain.StatusActive, now).
		Order("maturity_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
