package policy

import (
	"context"
	"time"
)

// Repository resolves the risk snapshot in force at a reference date.
// Snapshots are maintained by the external admin/config collaborator.
type Repository interface {
	LatestEffective(ctx context.Context, asOf time.Time) (*RiskPolicy, error)
}
