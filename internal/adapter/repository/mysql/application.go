package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appDomain "cryptolend-backend/internal/domain/application"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *appDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByDepositInvoiceID(ctx context.Context, invoiceID string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).Where("deposit_invoice_id = ?", invoiceID).First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) List(ctx context.Context, f appDomain.ListFilter) ([]appDomain.LoanApplication, error) {
	var out []appDomain.LoanApplication
	q := r.db.WithContext(ctx).Order("application_date DESC, id DESC")
	if f.BorrowerID != "" {
		q = q.Where("borrower_id = ?", f.BorrowerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return out, q.Find(&out).Error
}
