package timeproof

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryFirstUseWins(t *testing.T) {
	s := NewInMemoryRedeemStore(0)
	first, err := s.Use(context.Background(), "timeproof", "tok-1", time.Hour)
	if err != nil || !first {
		t.Fatalf("first use = (%v, %v), want (true, nil)", first, err)
	}
	again, err := s.Use(context.Background(), "timeproof", "tok-1", time.Hour)
	if err != nil || again {
		t.Fatalf("second use = (%v, %v), want (false, nil)", again, err)
	}
}

func TestInMemoryKindsAreIndependent(t *testing.T) {
	s := NewInMemoryRedeemStore(0)
	if ok, _ := s.Use(context.Background(), "timeproof", "v", time.Hour); !ok {
		t.Fatal("first kind should be fresh")
	}
	if ok, _ := s.Use(context.Background(), "nonce", "v", time.Hour); !ok {
		t.Fatal("same value under another kind should be fresh")
	}
}

func TestInMemoryExpiredEntryReusable(t *testing.T) {
	s := NewInMemoryRedeemStore(0)
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	if ok, _ := s.Use(context.Background(), "timeproof", "tok", time.Minute); !ok {
		t.Fatal("fresh entry rejected")
	}
	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if ok, _ := s.Use(context.Background(), "timeproof", "tok", time.Minute); !ok {
		t.Fatal("expired entry should be usable again")
	}
}

func TestInMemoryRejectsEmptyInputs(t *testing.T) {
	s := NewInMemoryRedeemStore(0)
	if _, err := s.Use(context.Background(), "", "v", time.Hour); err == nil {
		t.Fatal("empty kind accepted")
	}
	if _, err := s.Use(context.Background(), "timeproof", "  ", time.Hour); err == nil {
		t.Fatal("blank value accepted")
	}
}

func TestInMemoryPurgeDropsExpired(t *testing.T) {
	s := NewInMemoryRedeemStore(2)
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.Use(context.Background(), "timeproof", "old", time.Minute)
	s.now = func() time.Time { return base.Add(time.Hour) }
	// Second call hits the purge threshold and sweeps the expired entry.
	s.Use(context.Background(), "timeproof", "new", time.Minute)

	s.mu.Lock()
	_, ok := s.entries["timeproof|old"]
	s.mu.Unlock()
	if ok {
		t.Fatal("expired entry survived the purge")
	}
}
