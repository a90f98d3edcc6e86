package audio

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due, keep []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.stopped || t.fired:
		case t.at <= c.now:
			t.fired = true
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	c.timers = keep
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

func quietLog() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestEngine returns an engine on a fresh headless host driven by a
// fake clock.
func newTestEngine(opts ...Option) (*Engine, *HeadlessHost, *fakeClock) {
	host := NewHeadlessHost()
	clock := &fakeClock{}
	opts = append([]Option{WithClock(clock), WithLogger(quietLog())}, opts...)
	return NewEngine(host, opts...), host, clock
}

// instrumentNode returns the first node created for an instrument kind.
func instrumentNode(h *HeadlessHost, kind InstrumentKind) *HeadlessNode {
	for _, n := range h.Nodes() {
		if n.Kind() == kind {
			return n
		}
	}
	return nil
}

func nodesLabeled(h *HeadlessHost, label string) []*HeadlessNode {
	var out []*HeadlessNode
	for _, n := range h.Nodes() {
		if n.Label == label {
			out = append(out, n)
		}
	}
	return out
}
