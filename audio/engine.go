package audio

import (
	"context"
	"sync"
)

// FullBattery is the battery level of a fresh toy.
const FullBattery = 100.0

// Request is one call to play a sound.
type Request struct {
	Sound      *SoundDescriptor
	Morph      *SoundDescriptor // optional second sound to blend toward
	Mix        float64          // 0..1, used only when Morph is set
	ToySpeaker bool             // route through the degradation chain
	Battery    float64          // 0..100
}

// NewRequest returns a request for sound at full battery.
func NewRequest(sound *SoundDescriptor) Request {
	return Request{Sound: sound, Battery: FullBattery}
}

// Engine is the audio runtime: it owns the instrument cache, the
// outstanding disposal timers and the context bootstrap.
type Engine struct {
	host  Host
	cfg   Config
	log   *Logger
	clock Clock

	instruments *InstrumentFactory
	effects     *EffectFactory
	dispatcher  *Dispatcher
	sched       *Scheduler
	boot        *Bootstrap

	mu     sync.Mutex
	gen    uint64
	owners map[Instrument]uint64 // latest route of each cached instrument
	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(log *Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock sets the clock driving deferred disposal.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// NewEngine creates an engine on host.
func NewEngine(host Host, opts ...Option) *Engine {
	e := &Engine{
		host:   host,
		cfg:    DefaultConfig(),
		log:    DefaultLogger(),
		clock:  RealClock(),
		owners: make(map[Instrument]uint64),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.instruments = NewInstrumentFactory(host, e.cfg.CacheLimit, e.log)
	e.effects = NewEffectFactory(host, e.log)
	e.dispatcher = NewDispatcher(e.cfg, e.log)
	e.sched = NewScheduler(e.clock, e.log)
	e.boot = NewBootstrap(host, e.log)
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Initialize starts the audio context. See Bootstrap.Initialize.
func (e *Engine) Initialize(ctx context.Context) bool {
	return e.boot.Initialize(ctx)
}

// State returns the host context state.
func (e *Engine) State() ContextState {
	return e.host.State()
}

// Pending returns the number of triggers whose nodes are still alive.
func (e *Engine) Pending() int {
	return e.sched.Pending()
}

// CachedInstruments returns the size of the instrument cache.
func (e *Engine) CachedInstruments() int {
	return e.instruments.Len()
}

// Trigger plays one sound. It builds the instrument, effect chain and
// optional toy speaker chain, wires them, fires the instrument and
// schedules disposal. Every failure is logged and absorbed; a nil handle
// means nothing was played.
func (e *Engine) Trigger(ctx context.Context, req Request) *Handle {
	if req.Sound == nil {
		e.log.Warn("no sound configuration provided")
		return nil
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		e.log.Warn("engine shut down, dropping trigger")
		return nil
	}

	sound := req.Sound
	if req.Morph != nil && req.Mix > 0 {
		sound = Interpolate(req.Sound, req.Morph, clamp01(req.Mix))
	}

	if e.host.State() != StateRunning {
		e.log.Warn("audio context not running, attempting to initialize", "state", string(e.host.State()))
		if !e.Initialize(ctx) {
			e.log.Warn("audio initialization failed, skipping sound", "err", ErrNotRunning)
			return nil
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Shutdown may have run while the context was starting.
	if e.closed {
		e.log.Warn("engine shut down during initialization, dropping trigger")
		return nil
	}

	inst, cached := e.instruments.Create(sound)
	if inst == nil {
		return nil
	}

	base, _ := sound.Options.Number("detune")
	if err := ApplyBatteryWear(inst, req.Battery, base, e.cfg); err != nil {
		e.log.Warn("battery wear not applied", "instrument", string(inst.Kind()), "err", err)
	}

	chain := e.effects.Chain(sound.Effects)

	var speaker *SpeakerChain
	if req.ToySpeaker {
		var err error
		speaker, err = BuildDegradationChain(e.host, e.cfg)
		if err != nil {
			e.log.Warn("toy speaker unavailable, playing direct", "err", err)
		}
	}

	nodes := append([]Node(nil), chain...)
	if speaker != nil {
		nodes = append(nodes, speaker.Nodes...)
	}
	if !cached {
		nodes = append(nodes, inst)
	}

	if err := Route(inst, chain, speaker, e.host.Destination()); err != nil {
		e.log.Error("routing failed", "instrument", string(inst.Kind()), "err", err)
		for _, n := range nodes {
			Guard(n).Dispose()
		}
		if cached {
			inst.Disconnect()
		}
		return nil
	}

	e.dispatcher.Trigger(inst, sound, e.host.Now())

	dur := e.dispatcher.Duration(sound)
	secs, err := e.host.Seconds(dur)
	if err != nil {
		e.log.Warn("unresolvable duration, using default", "duration", dur.String(), "err", err)
		secs = e.cfg.DefaultDuration
	}
	delay := DisposeDelay(secs, e.cfg.ReleaseTail)

	var release func()
	if cached {
		e.gen++
		gen := e.gen
		e.owners[inst] = gen
		release = func() { e.detach(inst, gen) }
	}
	e.log.Debug("sound triggered", "instrument", string(inst.Kind()), "delay", delay)
	return e.sched.Schedule(nodes, delay, release)
}

// detach disconnects a cached instrument unless a newer trigger has
// rerouted it since.
func (e *Engine) detach(inst Instrument, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owners[inst] != gen {
		return
	}
	delete(e.owners, inst)
	if err := inst.Disconnect(); err != nil {
		e.log.Warn("disconnect failed", "instrument", string(inst.Kind()), "err", err)
	}
}

// Shutdown disposes every pending trigger immediately and releases the
// instrument cache. Later triggers are dropped.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.sched.Flush()
	e.instruments.Dispose()

	e.mu.Lock()
	e.owners = make(map[Instrument]uint64)
	e.mu.Unlock()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
