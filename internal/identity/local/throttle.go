package local

import (
	"strings"
	"sync"
	"time"
)

const (
	maxFailedAttempts = 5
	attemptWindow     = 15 * time.Minute
)

// throttle counts recent failed sign-in attempts per email so the
// backend can report too-many-requests instead of letting callers
// hammer the credential check.
type throttle struct {
	mu       sync.Mutex
	now      func() time.Time
	attempts map[string]attemptRecord
}

type attemptRecord struct {
	count int
	since time.Time
}

func newThrottle() *throttle {
	return &throttle{
		now:      time.Now,
		attempts: make(map[string]attemptRecord),
	}
}

func (t *throttle) key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// blocked reports whether email has exhausted its attempt budget
// inside the current window.
func (t *throttle) blocked(email string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[t.key(email)]
	if !ok {
		return false
	}

	if t.now().Sub(rec.since) > attemptWindow {
		delete(t.attempts, t.key(email))
		return false
	}

	return rec.count >= maxFailedAttempts
}

func (t *throttle) fail(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := t.key(email)
	rec, ok := t.attempts[k]
	if !ok || t.now().Sub(rec.since) > attemptWindow {
		t.attempts[k] = attemptRecord{count: 1, since: t.now()}
		return
	}

	rec.count++
	t.attempts[k] = rec
}

func (t *throttle) reset(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, t.key(email))
}
