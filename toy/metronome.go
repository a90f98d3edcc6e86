package toy

import (
	"context"
	"sync"
	"time"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/kit"
)

// Metronome clicks once per beat at the toy's tempo. Every click drains
// the battery like a pad hit.
type Metronome struct {
	toy *Toy

	mu    sync.Mutex
	on    bool
	timer audio.Timer
	gen   uint64
}

// On reports whether the metronome is running.
func (m *Metronome) On() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on
}

// Start starts clicking one beat from now.
func (m *Metronome) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.on {
		return
	}
	m.on = true
	m.gen++
	m.schedule(m.gen)
}

// Stop stops clicking.
func (m *Metronome) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.on = false
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Toggle flips the metronome and returns the new state.
func (m *Metronome) Toggle() bool {
	if m.On() {
		m.Stop()
		return false
	}
	m.Start()
	return true
}

// schedule arms the next click. Callers hold m.mu.
func (m *Metronome) schedule(gen uint64) {
	interval := time.Duration(60 / m.toy.BPM() * float64(time.Second))
	m.timer = m.toy.clock.AfterFunc(interval, func() { m.tick(gen) })
}

func (m *Metronome) tick(gen uint64) {
	m.mu.Lock()
	if !m.on || m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.schedule(gen)
	m.mu.Unlock()

	t := m.toy
	t.mu.Lock()
	battery := t.drain()
	toySpeaker := t.toySpeaker
	t.mu.Unlock()

	req := audio.NewRequest(kit.MetronomeTick())
	req.ToySpeaker = toySpeaker
	req.Battery = battery
	t.player.Trigger(context.Background(), req)
}
