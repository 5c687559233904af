package notify

import (
	"testing"
	"time"

	"pulse-cli/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestQueue(ttl time.Duration) (*Queue, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	q := New(ttl, nil)
	q.SetClock(clk.now)
	return q, clk
}

func TestNew_DefaultTTL(t *testing.T) {
	if got := New(0, nil).TTL(); got != DefaultTTL {
		t.Fatalf("expected default ttl %v, got %v", DefaultTTL, got)
	}
}

func TestPush_InsertionOrder(t *testing.T) {
	q, clk := newTestQueue(5 * time.Second)

	a := q.Success("Project created successfully.")
	clk.advance(time.Second)
	b := q.Error("Failed to update project.")

	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty ids; got %q %q", a.ID, b.ID)
	}
	got := q.Active()
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Kind != model.NotificationSuccess || got[1].Kind != model.NotificationError {
		t.Fatalf("unexpected kinds: %+v", got)
	}
	if last, ok := q.Last(); !ok || last.ID != b.ID {
		t.Fatalf("expected last=%q, got %+v ok=%v", b.ID, last, ok)
	}
}

func TestExpire_OldestFirst(t *testing.T) {
	q, clk := newTestQueue(5 * time.Second)

	q.Success("first")
	clk.advance(2 * time.Second)
	second := q.Success("second")

	clk.advance(3 * time.Second)
	if n := q.Expire(); n != 1 {
		t.Fatalf("expected 1 expired, got %d", n)
	}
	got := q.Active()
	if len(got) != 1 || got[0].ID != second.ID {
		t.Fatalf("expected only second to remain; got %+v", got)
	}

	at, ok := q.NextExpiry()
	if !ok || !at.Equal(second.CreatedAt.Add(5*time.Second)) {
		t.Fatalf("unexpected next expiry %v ok=%v", at, ok)
	}

	clk.advance(2 * time.Second)
	if n := q.Expire(); n != 1 {
		t.Fatalf("expected 1 expired, got %d", n)
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
	if _, ok := q.NextExpiry(); ok {
		t.Fatalf("expected no next expiry on empty queue")
	}
}

func TestActive_HidesExpiredBeforeExpire(t *testing.T) {
	q, clk := newTestQueue(time.Second)
	q.Error("boom")
	clk.advance(time.Second)

	if got := q.Active(); len(got) != 0 {
		t.Fatalf("expected no active notifications; got %+v", got)
	}
	if got := q.All(); len(got) != 1 {
		t.Fatalf("expected expired entry still stored until Expire; got %d", len(got))
	}
}

func TestDismiss(t *testing.T) {
	q, _ := newTestQueue(time.Minute)
	a := q.Success("a")
	b := q.Success("b")
	c := q.Success("c")

	if !q.Dismiss(b.ID) {
		t.Fatalf("expected dismiss to succeed")
	}
	if q.Dismiss(b.ID) {
		t.Fatalf("expected second dismiss to be a no-op")
	}
	got := q.Active()
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != c.ID {
		t.Fatalf("unexpected remaining: %+v", got)
	}

	if !q.DismissOldest() {
		t.Fatalf("expected DismissOldest to remove a")
	}
	got = q.Active()
	if len(got) != 1 || got[0].ID != c.ID {
		t.Fatalf("unexpected remaining after DismissOldest: %+v", got)
	}
}
