package debounce

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	values []string
	at     []time.Time
}

func (r *recorder) emit(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	r.at = append(r.at, time.Now())
}

func (r *recorder) snapshot() ([]string, []time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...), append([]time.Time(nil), r.at...)
}

func TestBurstEmitsOnlyLastValueOnce(t *testing.T) {
	rec := &recorder{}
	e := New(300*time.Millisecond, rec.emit)
	defer e.Close()

	var last time.Time
	for _, v := range []string{"a", "ab", "abc"} {
		e.Set(v)
		last = time.Now()
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	values, at := rec.snapshot()
	if len(values) != 1 || values[0] != "abc" {
		t.Fatalf("expected only abc, got %v", values)
	}
	if elapsed := at[0].Sub(last); elapsed < 300*time.Millisecond {
		t.Fatalf("emitted %s after last keystroke, want at least 300ms", elapsed)
	}
	if e.Value() != "abc" {
		t.Fatalf("expected settled value abc, got %q", e.Value())
	}
}

func TestSettledValueIsNotReEmitted(t *testing.T) {
	rec := &recorder{}
	e := NewWithValue(20*time.Millisecond, "tea", rec.emit)
	defer e.Close()

	e.Set("tea")
	if e.Pending() {
		t.Fatal("setting the settled value should not start a timer")
	}

	e.Set("teapot")
	e.Set("tea")
	time.Sleep(80 * time.Millisecond)
	if values, _ := rec.snapshot(); len(values) != 0 {
		t.Fatalf("expected no emission when input returns to settled value, got %v", values)
	}
}

func TestCloseCancelsPendingEmission(t *testing.T) {
	rec := &recorder{}
	e := New(30*time.Millisecond, rec.emit)

	e.Set("x")
	if !e.Pending() {
		t.Fatal("expected pending emission")
	}
	e.Close()
	e.Set("y")
	time.Sleep(80 * time.Millisecond)

	if values, _ := rec.snapshot(); len(values) != 0 {
		t.Fatalf("expected no emission after close, got %v", values)
	}
	if e.Pending() {
		t.Fatal("expected no pending timer after close")
	}
}

func TestNilEmitStillTracksValue(t *testing.T) {
	e := New[int](10*time.Millisecond, nil)
	defer e.Close()

	e.Set(4)
	time.Sleep(50 * time.Millisecond)
	if e.Value() != 4 {
		t.Fatalf("expected 4, got %d", e.Value())
	}
}
