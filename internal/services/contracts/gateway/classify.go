package gateway

import (
	"context"
	"errors"
	"net"
)

// Outcome is the uniform classification of one platform call result.
type Outcome int

const (
	// OutcomeOK means the call succeeded.
	OutcomeOK Outcome = iota
	// OutcomeNotFound means the target was already gone; delete-class
	// operations treat this as success.
	OutcomeNotFound
	// OutcomeForbidden means the platform denied the call.
	OutcomeForbidden
	// OutcomeRateLimited means the platform throttled the call.
	OutcomeRateLimited
	// OutcomeTransient means a network-level failure worth one retry.
	OutcomeTransient
	// OutcomeFatal means an unclassified failure; the operation is
	// abandoned and logged with context.
	OutcomeFatal
)

// String names the outcome for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeTransient:
		return "transient"
	default:
		return "fatal"
	}
}

// Classify maps a platform call error onto the outcome taxonomy.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotFound
	}
	if errors.Is(err, ErrForbidden) {
		return OutcomeForbidden
	}
	if errors.Is(err, ErrRateLimited) {
		return OutcomeRateLimited
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return OutcomeTransient
	}
	return OutcomeFatal
}
