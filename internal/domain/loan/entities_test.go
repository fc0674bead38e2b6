package loan

import (
	"errors"
	"testing"
	"time"

	"cryptolend-backend/internal/domain/fault"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusActive, true},
		{StatusDraft, StatusMatured, false},
		{StatusDraft, StatusDefaulted, false},
		{StatusActive, StatusMatured, true},
		{StatusActive, StatusDefaulted, true},
		{StatusActive, StatusPendingEarlyLiquidation, true},
		{StatusActive, StatusPendingEarlyRepayment, true},
		{StatusActive, StatusEarlyLiquidated, false},
		{StatusActive, StatusEarlyRepaid, false},
		{StatusPendingEarlyLiquidation, StatusEarlyLiquidated, true},
		{StatusPendingEarlyLiquidation, StatusEarlyRepaid, false},
		{StatusPendingEarlyLiquidation, StatusActive, false},
		{StatusPendingEarlyRepayment, StatusEarlyRepaid, true},
		{StatusPendingEarlyRepayment, StatusEarlyLiquidated, false},
		{StatusMatured, StatusActive, false},
		{StatusEarlyLiquidated, StatusActive, false},
		{StatusEarlyRepaid, StatusDefaulted, false},
		{StatusDefaulted, StatusActive, false},
	}
	for _, tc := range cases {
		l := &Loan{Status: tc.from}
		err := l.TransitionTo(tc.to, time.Now())
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			if !errors.Is(err, fault.ErrIllegalStateTransition) {
				t.Fatalf("%s -> %s: want ErrIllegalStateTransition, got %v", tc.from, tc.to, err)
			}
			if l.Status != tc.from {
				t.Fatalf("%s -> %s: status mutated on rejected transition", tc.from, tc.to)
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	terminal := []Status{StatusMatured, StatusEarlyLiquidated, StatusEarlyRepaid, StatusDefaulted}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
	live := []Status{StatusDraft, StatusActive, StatusPendingEarlyLiquidation, StatusPendingEarlyRepayment}
	for _, s := range live {
		if s.Terminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}
