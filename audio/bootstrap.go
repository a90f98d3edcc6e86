package audio

import (
	"context"
	"sync"
)

type bootState int

const (
	bootUninitialized bootState = iota
	bootInitializing
	bootReady
	bootFailed
)

func (s bootState) String() string {
	switch s {
	case bootUninitialized:
		return "uninitialized"
	case bootInitializing:
		return "initializing"
	case bootReady:
		return "ready"
	case bootFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// attempt is one in-flight start. done is closed when ok is final.
type attempt struct {
	done chan struct{}
	ok   bool
}

// Bootstrap starts the host audio context at most once at a time.
// Concurrent callers share the in-flight attempt; a failed attempt can
// be retried by the next caller.
type Bootstrap struct {
	host Host
	log  *Logger

	mu       sync.Mutex
	state    bootState
	inflight *attempt
}

// NewBootstrap creates a bootstrap for host.
func NewBootstrap(host Host, log *Logger) *Bootstrap {
	if log == nil {
		log = DefaultLogger()
	}
	return &Bootstrap{host: host, log: log}
}

// Initialize starts the audio context, or waits for the attempt already
// in flight. It must be reached from a user gesture in the browser. It
// returns false on failure and never panics.
func (b *Bootstrap) Initialize(ctx context.Context) bool {
	b.mu.Lock()
	// A context suspended by the platform after a successful start is
	// resumed through a fresh attempt.
	if b.host.State() == StateRunning {
		b.state = bootReady
		b.mu.Unlock()
		return true
	}
	if b.state == bootInitializing {
		a := b.inflight
		b.mu.Unlock()
		select {
		case <-a.done:
			return a.ok
		case <-ctx.Done():
			return false
		}
	}
	a := &attempt{done: make(chan struct{})}
	b.state = bootInitializing
	b.inflight = a
	b.mu.Unlock()

	err := b.start(ctx)

	b.mu.Lock()
	if err != nil {
		b.log.Warn("failed to start audio context", "err", err)
		b.state = bootFailed
	} else {
		b.log.Info("audio context started")
		b.state = bootReady
	}
	a.ok = err == nil
	b.inflight = nil
	close(a.done)
	b.mu.Unlock()
	return a.ok
}

func (b *Bootstrap) start(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewNodeError("start", "context", panicError(r))
		}
	}()
	return b.host.Start(ctx)
}

// Ready reports whether a start attempt has succeeded.
func (b *Bootstrap) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == bootReady
}
