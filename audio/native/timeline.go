package native

import (
	"sort"
	"sync"
	"time"

	"github.com/simukka/drumpal/audio"
)

// Timeline is an audio.Clock driven by render time instead of the wall
// clock, so offline renders dispose nodes at the right sample.
type Timeline struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timelineTimer
}

type timelineTimer struct {
	tl      *Timeline
	at      time.Duration
	f       func()
	stopped bool
}

func (t *timelineTimer) Stop() bool {
	t.tl.mu.Lock()
	defer t.tl.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewTimeline starts a timeline at zero.
func NewTimeline() *Timeline { return &Timeline{} }

func (tl *Timeline) AfterFunc(d time.Duration, f func()) audio.Timer {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	t := &timelineTimer{tl: tl, at: tl.now + d, f: f}
	tl.timers = append(tl.timers, t)
	return t
}

// Now returns the current timeline position.
func (tl *Timeline) Now() time.Duration {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.now
}

// AdvanceTo moves the timeline to now and runs the timers that became
// due, earliest first. Moving backwards is ignored.
func (tl *Timeline) AdvanceTo(now time.Duration) {
	tl.mu.Lock()
	if now < tl.now {
		tl.mu.Unlock()
		return
	}
	tl.now = now
	var due, keep []*timelineTimer
	for _, t := range tl.timers {
		switch {
		case t.stopped:
		case t.at <= now:
			t.stopped = true
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	tl.timers = keep
	tl.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of timers not yet fired or stopped.
func (tl *Timeline) Pending() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	n := 0
	for _, t := range tl.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
