package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// gatedHost blocks Start until the gate is closed.
type gatedHost struct {
	*HeadlessHost
	gate  chan struct{}
	calls atomic.Int32
}

func (g *gatedHost) Start(ctx context.Context) error {
	g.calls.Add(1)
	<-g.gate
	return g.HeadlessHost.Start(ctx)
}

// panicHost throws from Start like a rejected browser promise.
type panicHost struct{ *HeadlessHost }

func (panicHost) Start(context.Context) error { panic("NotAllowedError") }

// TestBootstrap_Initialize_SingleFlight shares one start between
// concurrent callers.
func TestBootstrap_Initialize_SingleFlight(t *testing.T) {
	host := &gatedHost{HeadlessHost: NewHeadlessHost(), gate: make(chan struct{})}
	b := NewBootstrap(host, quietLog())

	var wg sync.WaitGroup
	results := make([]bool, 8)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = b.Initialize(context.Background())
	}()
	for host.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.Initialize(context.Background())
		}(i)
	}
	close(host.gate)
	wg.Wait()

	if n := host.calls.Load(); n != 1 {
		t.Errorf("Expected a single start, got %d", n)
	}
	for i, ok := range results {
		if !ok {
			t.Errorf("caller %d: expected success", i)
		}
	}
	if !b.Ready() {
		t.Error("Expected bootstrap to be ready")
	}
}

func TestBootstrap_Initialize_RetryAfterFailure(t *testing.T) {
	host := NewHeadlessHost()
	host.StartErr = errors.New("autoplay blocked")
	b := NewBootstrap(host, quietLog())

	if b.Initialize(context.Background()) {
		t.Error("Expected the first start to fail")
	}
	if b.Ready() {
		t.Error("Expected bootstrap not to be ready")
	}

	host.StartErr = nil
	if !b.Initialize(context.Background()) {
		t.Error("Expected the retry to succeed")
	}
	if host.Count("start") != 2 {
		t.Errorf("Expected 2 start attempts, got %d", host.Count("start"))
	}
}

func TestBootstrap_Initialize_AlreadyRunning(t *testing.T) {
	host := NewHeadlessHost()
	host.SetState(StateRunning)
	b := NewBootstrap(host, quietLog())

	if !b.Initialize(context.Background()) {
		t.Error("Expected a running context to be ready")
	}
	if host.Count("start") != 0 {
		t.Error("Expected no start call for a running context")
	}
}

// TestBootstrap_Initialize_Resumes starts again after the platform
// suspended the context.
func TestBootstrap_Initialize_Resumes(t *testing.T) {
	host := NewHeadlessHost()
	b := NewBootstrap(host, quietLog())
	b.Initialize(context.Background())

	host.SetState(StateSuspended)
	if !b.Initialize(context.Background()) {
		t.Error("Expected resume to succeed")
	}
	if host.State() != StateRunning {
		t.Errorf("Expected running, got %q", host.State())
	}
}

func TestBootstrap_Initialize_Panic(t *testing.T) {
	b := NewBootstrap(panicHost{NewHeadlessHost()}, quietLog())
	if b.Initialize(context.Background()) {
		t.Error("Expected a panicking start to fail")
	}
}

// TestBootstrap_Initialize_WaiterCancelled stops waiting on the shared
// attempt when its own context ends.
func TestBootstrap_Initialize_WaiterCancelled(t *testing.T) {
	host := &gatedHost{HeadlessHost: NewHeadlessHost(), gate: make(chan struct{})}
	b := NewBootstrap(host, quietLog())

	done := make(chan bool)
	go func() { done <- b.Initialize(context.Background()) }()
	for host.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if b.Initialize(ctx) {
		t.Error("Expected a cancelled waiter to give up")
	}

	close(host.gate)
	if !<-done {
		t.Error("Expected the original attempt to succeed")
	}
}
