package timeproof

import (
	"context"
	"time"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

// Collaborator is the time-tracking service contract the validator delegates
// to. RedeemTimeProof owns the atomic single-use guarantee and returns the
// binding the token was issued for alongside the proven elapsed time.
type Collaborator interface {
	IssueTimeProof(ctx context.Context, b Binding) (string, error)
	RedeemTimeProof(ctx context.Context, token string) (Binding, time.Duration, error)
}

// Service is the in-process time-tracking collaborator: it issues HMAC-signed
// single-use tokens when a task view opens and redeems them at submission.
// The redeem store decides the deployment's redemption scope (process-local,
// shared Redis, or the gateway database).
type Service struct {
	hmac  []byte
	ttl   time.Duration
	store RedeemStore
	now   func() time.Time
}

func NewService(secret string, ttl time.Duration, store RedeemStore) *Service {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Service{hmac: []byte(secret), ttl: ttl, store: store, now: time.Now}
}

// IssueTimeProof mints a token bound to one task slot. The issue timestamp
// inside the token is what elapsed time is later measured against.
func (s *Service) IssueTimeProof(ctx context.Context, b Binding) (string, error) {
	return signToken(s.hmac, b, s.ttl, s.now())
}

// RedeemTimeProof verifies and atomically consumes a token. First redeemer
// wins; every later call fails with ErrAlreadyRedeemed until the entry
// expires, by which time the token itself is expired too.
func (s *Service) RedeemTimeProof(ctx context.Context, token string) (Binding, time.Duration, error) {
	now := s.now()
	c, err := parseToken(s.hmac, token, now)
	if err != nil {
		return Binding{}, 0, err
	}
	remaining := c.ExpiresAt.Time.Sub(now)
	first, err := s.store.Use(ctx, "timeproof", c.ID, remaining)
	if err != nil {
		return Binding{}, 0, err
	}
	if !first {
		return Binding{}, 0, ErrAlreadyRedeemed
	}
	b := Binding{Tutorial: curriculum.Tutorial(c.Tutorial), Unit: c.Unit, Task: c.Task}
	return b, now.Sub(c.IssuedAt.Time), nil
}
