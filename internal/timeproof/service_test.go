package timeproof

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testBinding() Binding {
	return Binding{Tutorial: curriculum.TutorialPersonalFinance, Unit: 2, Task: 3}
}

func TestIssueAndRedeemReportsElapsed(t *testing.T) {
	issued := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService("secret", time.Hour, NewInMemoryRedeemStore(0))
	svc.now = fixedClock(issued)

	token, err := svc.IssueTimeProof(context.Background(), testBinding())
	if err != nil {
		t.Fatalf("IssueTimeProof: %v", err)
	}

	svc.now = fixedClock(issued.Add(7 * time.Minute))
	b, elapsed, err := svc.RedeemTimeProof(context.Background(), token)
	if err != nil {
		t.Fatalf("RedeemTimeProof: %v", err)
	}
	if b != testBinding() {
		t.Fatalf("binding = %+v, want %+v", b, testBinding())
	}
	if elapsed != 7*time.Minute {
		t.Fatalf("elapsed = %v, want 7m", elapsed)
	}
}

func TestRedeemTwiceFails(t *testing.T) {
	svc := NewService("secret", time.Hour, NewInMemoryRedeemStore(0))
	token, err := svc.IssueTimeProof(context.Background(), testBinding())
	if err != nil {
		t.Fatalf("IssueTimeProof: %v", err)
	}
	if _, _, err := svc.RedeemTimeProof(context.Background(), token); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	_, _, err = svc.RedeemTimeProof(context.Background(), token)
	if !errors.Is(err, ErrAlreadyRedeemed) {
		t.Fatalf("second redeem err = %v, want ErrAlreadyRedeemed", err)
	}
}

func TestRedeemExpiredToken(t *testing.T) {
	issued := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService("secret", time.Hour, NewInMemoryRedeemStore(0))
	svc.now = fixedClock(issued)

	token, err := svc.IssueTimeProof(context.Background(), testBinding())
	if err != nil {
		t.Fatalf("IssueTimeProof: %v", err)
	}

	svc.now = fixedClock(issued.Add(2 * time.Hour))
	_, _, err = svc.RedeemTimeProof(context.Background(), token)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestRedeemWrongKey(t *testing.T) {
	issuer := NewService("secret-a", time.Hour, NewInMemoryRedeemStore(0))
	token, err := issuer.IssueTimeProof(context.Background(), testBinding())
	if err != nil {
		t.Fatalf("IssueTimeProof: %v", err)
	}

	verifier := NewService("secret-b", time.Hour, NewInMemoryRedeemStore(0))
	_, _, err = verifier.RedeemTimeProof(context.Background(), token)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestRedeemGarbage(t *testing.T) {
	svc := NewService("secret", time.Hour, NewInMemoryRedeemStore(0))
	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		if _, _, err := svc.RedeemTimeProof(context.Background(), token); !errors.Is(err, ErrMalformed) {
			t.Fatalf("token %q: err = %v, want ErrMalformed", token, err)
		}
	}
}
