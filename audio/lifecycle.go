package audio

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks. The real clock uses time.AfterFunc,
// which GopherJS maps onto setTimeout.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// guard makes Dispose idempotent and absorbs host panics.
type guard struct {
	Node
	once sync.Once
	err  error
}

func (g *guard) Dispose() error {
	g.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				g.err = NewNodeError("dispose", "", panicError(r))
			}
		}()
		g.err = g.Node.Dispose()
	})
	return g.err
}

// Guard wraps n so that disposing it more than once is a no-op.
func Guard(n Node) Node {
	if n == nil {
		return nil
	}
	if g, ok := n.(*guard); ok {
		return g
	}
	return &guard{Node: n}
}

// Handle tracks the deferred disposal of the nodes created for one
// trigger.
type Handle struct {
	sched   *Scheduler
	nodes   []Node
	release func() // runs after the nodes are disposed
	timer   Timer
	once    sync.Once
	done    chan struct{}
}

// Cancel stops the pending timer and disposes the nodes immediately,
// cutting any remaining tail. Calling it after the timer fired is a no-op.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	h.fire()
}

// Done is closed once the nodes have been disposed.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Disposed reports whether the nodes have been released.
func (h *Handle) Disposed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Handle) fire() {
	h.once.Do(func() {
		for _, n := range h.nodes {
			if err := n.Dispose(); err != nil {
				h.sched.log.Warn("dispose failed", "err", err)
			}
		}
		if h.release != nil {
			h.release()
		}
		h.sched.forget(h)
		close(h.done)
	})
}

// Scheduler disposes per-trigger node sets after their audible lifetime
// and keeps the set of outstanding timers so they can be flushed on
// shutdown.
type Scheduler struct {
	clock   Clock
	log     *Logger
	mu      sync.Mutex
	pending map[*Handle]struct{}
}

// NewScheduler creates a scheduler on the given clock.
func NewScheduler(clock Clock, log *Logger) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if log == nil {
		log = DefaultLogger()
	}
	return &Scheduler{
		clock:   clock,
		log:     log,
		pending: make(map[*Handle]struct{}),
	}
}

// Schedule disposes nodes after the given delay. Every node is wrapped
// with Guard, so nodes shared with another handle are released once.
// release, if non-nil, runs after the nodes are disposed.
func (s *Scheduler) Schedule(nodes []Node, after time.Duration, release func()) *Handle {
	h := &Handle{
		sched:   s,
		nodes:   make([]Node, 0, len(nodes)),
		release: release,
		done:    make(chan struct{}),
	}
	for _, n := range nodes {
		if n != nil {
			h.nodes = append(h.nodes, Guard(n))
		}
	}

	s.mu.Lock()
	s.pending[h] = struct{}{}
	h.timer = s.clock.AfterFunc(after, h.fire)
	s.mu.Unlock()
	return h
}

// Pending returns the number of disposals not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush cancels every outstanding timer and disposes its nodes now.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.pending))
	for h := range s.pending {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}

func (s *Scheduler) forget(h *Handle) {
	s.mu.Lock()
	delete(s.pending, h)
	s.mu.Unlock()
}

// DisposeDelay computes how long the nodes of one trigger stay alive.
func DisposeDelay(durationSeconds float64, tail time.Duration) time.Duration {
	return time.Duration(durationSeconds*float64(time.Second)) + tail
}
