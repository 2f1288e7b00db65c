package toast

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPushAssignsIncreasingIDsAndExpires(t *testing.T) {
	s := NewStore(30 * time.Millisecond)
	defer s.Close()

	first := s.Push("Added 1 × Mug")
	second := s.Push("Promo applied")
	if second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if got := s.List(); len(got) != 2 || got[0].Message != "Added 1 × Mug" {
		t.Fatalf("unexpected toasts %+v", got)
	}

	time.Sleep(100 * time.Millisecond)
	if got := s.List(); len(got) != 0 {
		t.Fatalf("expected toasts to expire, got %+v", got)
	}
}

func TestDismissRemovesEarly(t *testing.T) {
	s := NewStore(time.Minute)
	defer s.Close()

	toast := s.Push("Order placed!")
	if !s.Dismiss(toast.ID) {
		t.Fatal("expected dismiss to report removal")
	}
	if s.Dismiss(toast.ID) {
		t.Fatal("expected second dismiss to be a no-op")
	}
	if len(s.List()) != 0 {
		t.Fatalf("expected empty list, got %+v", s.List())
	}
}

func TestSubscribeSeesPushAndExpiry(t *testing.T) {
	s := NewStore(20 * time.Millisecond)
	defer s.Close()

	changes := make(chan int, 4)
	s.Subscribe(func(toasts []Toast) { changes <- len(toasts) })

	s.Push("Invalid promo")
	if n := <-changes; n != 1 {
		t.Fatalf("expected one visible toast after push, got %d", n)
	}
	select {
	case n := <-changes:
		if n != 0 {
			t.Fatalf("expected zero toasts after expiry, got %d", n)
		}
	case <-time.After(time.Second):
		t.Fatal("expiry was never observed")
	}
}

func TestCloseStopsTimersAndIgnoresPushes(t *testing.T) {
	s := NewStore(time.Hour)
	s.Push("one")
	s.Push("two")
	s.Close()

	if len(s.List()) != 0 {
		t.Fatalf("expected close to drop toasts")
	}
	s.Push("late")
	if len(s.List()) != 0 {
		t.Fatalf("expected push after close to be ignored")
	}
}

func TestDefaultTTL(t *testing.T) {
	s := NewStore(0)
	defer s.Close()
	toast := s.Push("x")
	if got := toast.ExpiresAt.Sub(toast.CreatedAt); got != DefaultTTL {
		t.Fatalf("expected default ttl %s, got %s", DefaultTTL, got)
	}
}
