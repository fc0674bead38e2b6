// Package fault defines the error taxonomy shared across the lending core.
// Usecases return these sentinels (wrapped with context via fmt.Errorf + %w);
// the HTTP adapter maps them to status codes with errors.Is.
package fault

import "errors"

var (
	// ErrCurrencyNotSupported: no Currency record for the requested
	// (blockchain, token) pair. Retryable with a different pair.
	ErrCurrencyNotSupported = errors.New("currency not supported")

	// ErrRateOutOfPolicyBounds: interest rate or requested amount outside the
	// platform policy's configured [min,max]. Caller must resubmit corrected values.
	ErrRateOutOfPolicyBounds = errors.New("rate or amount out of policy bounds")

	// ErrInsufficientAvailability: a concurrent match consumed the offer's
	// remaining availability first. Retryable against another offer.
	ErrInsufficientAvailability = errors.New("insufficient offer availability")

	// ErrIllegalStateTransition: the record is not in a state that permits the
	// requested transition (stale client view). Not retryable as-is.
	ErrIllegalStateTransition = errors.New("illegal state transition")

	// ErrPreconditionNotAcknowledged: an early-exit request arrived without the
	// required risk acknowledgment flag.
	ErrPreconditionNotAcknowledged = errors.New("risk acknowledgment required")

	ErrNotFound = errors.New("record not found")
)

// Retryable reports whether the caller may retry the same class of request
// (possibly with different parameters) without fixing a client bug first.
func Retryable(err error) bool {
	return errors.Is(err, ErrCurrencyNotSupported) ||
		errors.Is(err, ErrInsufficientAvailability)
}
