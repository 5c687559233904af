// Package notify keeps the transient success/error messages shown to the user.
//
// Messages are kept in insertion order and expire a fixed TTL after creation, so the
// oldest message always expires first.
package notify

import (
	"strings"
	"sync"
	"time"

	"pulse-cli/internal/metrics"
	"pulse-cli/internal/model"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays visible unless dismissed.
const DefaultTTL = 5 * time.Second

type Queue struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	items   []model.Notification
	metrics *metrics.Metrics
}

// New returns an empty queue. ttl <= 0 selects DefaultTTL. m may be nil.
func New(ttl time.Duration, m *metrics.Metrics) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, now: time.Now, metrics: m}
}

// SetClock replaces the time source (tests).
func (q *Queue) SetClock(now func() time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	q.now = now
}

func (q *Queue) TTL() time.Duration { return q.ttl }

func (q *Queue) Success(text string) model.Notification {
	return q.Push(model.NotificationSuccess, text)
}

func (q *Queue) Error(text string) model.Notification {
	return q.Push(model.NotificationError, text)
}

// Push appends a notification and returns it.
func (q *Queue) Push(kind model.NotificationKind, text string) model.Notification {
	q.mu.Lock()
	n := model.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      strings.TrimSpace(text),
		CreatedAt: q.now(),
	}
	q.items = append(q.items, n)
	q.mu.Unlock()

	q.metrics.ObserveNotification(string(kind))
	return n
}

// Dismiss removes the notification with the given id. It reports whether one was removed.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// DismissOldest removes the oldest notification, if any.
func (q *Queue) DismissOldest() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return false
	}
	q.items = append([]model.Notification(nil), q.items[1:]...)
	return true
}

// Expire drops every notification older than the TTL and returns how many were dropped.
func (q *Queue) Expire() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	n := 0
	for n < len(q.items) && q.expired(q.items[n], now) {
		n++
	}
	if n > 0 {
		q.items = append([]model.Notification(nil), q.items[n:]...)
	}
	return n
}

func (q *Queue) expired(n model.Notification, now time.Time) bool {
	return !now.Before(n.CreatedAt.Add(q.ttl))
}

// Active returns the live notifications, oldest first. Expired entries are skipped but
// only Expire removes them.
func (q *Queue) Active() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	out := make([]model.Notification, 0, len(q.items))
	for _, n := range q.items {
		if !q.expired(n, now) {
			out = append(out, n)
		}
	}
	return out
}

// All returns every stored notification including expired ones not yet removed.
func (q *Queue) All() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.Notification(nil), q.items...)
}

// Last returns the most recent notification.
func (q *Queue) Last() (model.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return model.Notification{}, false
	}
	return q.items[len(q.items)-1], true
}

// NextExpiry reports when the oldest notification expires.
func (q *Queue) NextExpiry() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].CreatedAt.Add(q.ttl), true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
