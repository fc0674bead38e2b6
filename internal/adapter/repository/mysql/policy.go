package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	policyDomain "cryptolend-backend/internal/domain/policy"
)

type PolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) *PolicyRepository { return &PolicyRepository{db: db} }

func (r *PolicyRepository) LatestEffective(ctx context.Context, asOf time.Time) (*policyDomain.RiskPolicy, error) {
	var out policyDomain.RiskPolicy
	res := r.db.WithContext(ctx).
		Where("effective_at <= ?", asOf).
		Order("effective_at DESC, version DESC").
		First(&out)
	return &out, res.Error
}
