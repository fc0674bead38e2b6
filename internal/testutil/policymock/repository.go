package policymock

import (
	"context"
	"time"

	domain "cryptolend-backend/internal/domain/policy"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	LatestEffectiveFn func(ctx context.Context, asOf time.Time) (*domain.RiskPolicy, error)
}

func (m *Repo) LatestEffective(ctx context.Context, asOf time.Time) (*domain.RiskPolicy, error) {
	if m.LatestEffectiveFn != nil {
		return m.LatestEffectiveFn(ctx, asOf)
	}
	return nil, context.Canceled
}
