package timeproof

import (
	"context"
	"time"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

// Validator is the gateway-side half of time-proof checking. The collaborator
// owns the single-use guarantee; the validator rejects obviously malformed
// tokens without a round trip and verifies the redeemed binding matches the
// submission even when the collaborator accepted the redeem.
type Validator struct {
	svc Collaborator
}

func NewValidator(svc Collaborator) *Validator {
	return &Validator{svc: svc}
}

// Redeem consumes the token and returns the proven elapsed time, or one of
// ErrMalformed, ErrExpired, ErrAlreadyRedeemed, ErrMismatched.
func (v *Validator) Redeem(ctx context.Context, token string, tutorial curriculum.Tutorial, unit, task int) (time.Duration, error) {
	if !wellFormed(token) {
		return 0, ErrMalformed
	}
	got, elapsed, err := v.svc.RedeemTimeProof(ctx, token)
	if err != nil {
		return 0, err
	}
	want := Binding{Tutorial: tutorial, Unit: unit, Task: task}
	if got != want {
		// A collaborator that redeems a token for the wrong slot has broken
		// protocol; the submission must not score either way.
		return 0, ErrMismatched
	}
	return elapsed, nil
}
