// file: internal/search/debounce.go
// version: 1.1.0
// guid: e1f2a3b4-c5d6-7e8f-9a0b-1c2d3e4f5a6b

package search

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jdfalk/fund-discovery/internal/metrics"
)

// Debouncer coalesces rapid repeat calls for the same key into a single
// execution. Each call restarts the key's quiet window; when the window
// elapses the most recent fn runs once and every caller that waited gets the
// same result. Used per (caller, normalized query) so one user's keystrokes
// never delay another user's.
type Debouncer[T any] struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*waiter[T]
	group   singleflight.Group
}

type waiter[T any] struct {
	timer *time.Timer
	done  chan struct{}
	fn    func() (T, error)
	val   T
	err   error
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, pending: make(map[string]*waiter[T])}
}

// Do blocks until the quiet window for key elapses, then returns the shared
// result of the latest fn registered for that key. A newer call supersedes
// this one's fn but this caller still receives the fresh result. Cancelling
// ctx abandons only this caller's wait; the window and other waiters are
// unaffected.
func (d *Debouncer[T]) Do(ctx context.Context, key string, fn func() (T, error)) (T, error) {
	d.mu.Lock()
	w, live := d.pending[key]
	if live {
		if w.timer.Stop() {
			// Superseded the previous keystroke: latest fn wins, window
			// restarts.
			metrics.IncDebounceCoalesced()
			w.fn = fn
			w.timer.Reset(d.delay)
		} else {
			// The window fired between map lookup and Stop; it completes on
			// its own and this call opens a fresh window.
			live = false
		}
	}
	if !live {
		w = &waiter[T]{done: make(chan struct{}), fn: fn}
		cur := w
		cur.timer = time.AfterFunc(d.delay, func() { d.fire(key, cur) })
		d.pending[key] = w
	}
	d.mu.Unlock()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-w.done:
	}
	return w.val, w.err
}

// fire runs when a key's window goes quiet. The generation check keeps a
// stale window from deleting its replacement, and singleflight shares one
// in-flight computation with any back-to-back window for the same key.
func (d *Debouncer[T]) fire(key string, w *waiter[T]) {
	d.mu.Lock()
	if d.pending[key] == w {
		delete(d.pending, key)
	}
	fn := w.fn
	d.mu.Unlock()

	v, err, _ := d.group.Do(key, func() (interface{}, error) { return fn() })
	if err == nil {
		w.val = v.(T)
	}
	w.err = err
	close(w.done)
}

// PendingKeys reports how many keys currently have an open window.
func (d *Debouncer[T]) PendingKeys() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
