package rod

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxInflight is the number of in-flight requests still considered idle.
const DefaultMaxInflight = 2

// DefaultQuietWindow is how long the network must stay idle.
const DefaultQuietWindow = 500 * time.Millisecond

// netTracker counts in-flight network requests of a page and records when
// their number last dropped to maxInflight or below.
type netTracker struct {
	mu          sync.Mutex
	inflight    map[proto.NetworkRequestID]struct{}
	maxInflight int
	idleSince   time.Time // zero while busy
	now         func() time.Time
}

func newNetTracker(maxInflight int, now func() time.Time) *netTracker {
	return &netTracker{
		inflight:    make(map[proto.NetworkRequestID]struct{}),
		maxInflight: maxInflight,
		idleSince:   now(),
		now:         now,
	}
}

func (t *netTracker) started(id proto.NetworkRequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id] = struct{}{}
	if len(t.inflight) > t.maxInflight {
		t.idleSince = time.Time{}
	}
}

func (t *netTracker) finished(id proto.NetworkRequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, id)
	if len(t.inflight) <= t.maxInflight && t.idleSince.IsZero() {
		t.idleSince = t.now()
	}
}

// idleFor reports how long the network has been idle, counting no earlier
// than from.
func (t *netTracker) idleFor(from time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.idleSince.IsZero() {
		return 0
	}
	since := t.idleSince
	if since.Before(from) {
		since = from
	}
	return t.now().Sub(since)
}

// waitIdle blocks until the network has been idle for window or ctx is done.
func (t *netTracker) waitIdle(ctx context.Context, window time.Duration) error {
	from := t.now()
	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()
	for {
		if t.idleFor(from) >= window {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
		}
	}
}
