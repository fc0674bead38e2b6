// Package worker runs the pull-style time-based transitions: offer expiry
// and loan maturity are swept periodically instead of scheduled per record.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	loanUC "cryptolend-backend/internal/usecase/loan"
	offerUC "cryptolend-backend/internal/usecase/offer"
)

type Sweeper struct {
	offers *offerUC.Usecase
	loans  *loanUC.Usecase

	interval time.Duration
	batch    int
	log      *logrus.Logger
}

func NewSweeper(offers *offerUC.Usecase, loans *loanUC.Usecase, interval time.Duration, batch int, log *logrus.Logger) *Sweeper {
	return &Sweeper{offers: offers, loans: loans, interval: interval, batch: batch, log: log}
}

// Run blocks until ctx is cancelled. Each tick is best-effort: a failing
// sweep is logged and retried on the next tick, never fatal.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()

	if n, err := s.offers.ExpireDue(ctx, now, s.batch); err != nil {
		s.log.WithError(err).Warn("offer expiry sweep")
	} else if n > 0 {
		s.log.WithField("expired", n).Info("offer expiry sweep")
	}

	if n, err := s.loans.MatureDue(ctx, now, s.batch); err != nil {
		s.log.WithError(err).Warn("loan maturity sweep")
	} else if n > 0 {
		s.log.WithField("matured", n).Info("loan maturity sweep")
	}
}
