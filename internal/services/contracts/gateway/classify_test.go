package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeOK},
		{"not found", ErrNotFound, OutcomeNotFound},
		{"wrapped not found", fmt.Errorf("delete: %w", ErrNotFound), OutcomeNotFound},
		{"forbidden", ErrForbidden, OutcomeForbidden},
		{"rate limited", ErrRateLimited, OutcomeRateLimited},
		{"deadline", context.DeadlineExceeded, OutcomeTransient},
		{"net error", timeoutError{}, OutcomeTransient},
		{"unknown", errors.New("boom"), OutcomeFatal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	if got := OutcomeRateLimited.String(); got != "rate_limited" {
		t.Fatalf("String() = %q, want %q", got, "rate_limited")
	}
	if got := Outcome(99).String(); got != "fatal" {
		t.Fatalf("String() = %q, want %q", got, "fatal")
	}
}
