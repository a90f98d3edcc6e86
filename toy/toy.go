// Package toy is the drum machine's controller: it turns pad hits into
// audio requests and owns the toy state around them (battery, speaker
// and well-loved switches, tempo, recorder and metronome).
package toy

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/common"
	"github.com/simukka/drumpal/kit"
)

// Player plays audio requests. *audio.Engine implements it.
type Player interface {
	Trigger(ctx context.Context, req audio.Request) *audio.Handle
}

// Clock schedules callbacks and tells the time.
type Clock interface {
	audio.Clock
	Now() time.Time
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) audio.Timer { return time.AfterFunc(d, f) }
func (realClock) Now() time.Time                                  { return time.Now() }

// Toy is the drum machine.
type Toy struct {
	cfg    Config
	log    *audio.Logger
	player Player
	clock  Clock
	jitter audio.Jitter

	mu         sync.Mutex
	pads       []kit.Pad
	battery    float64
	toySpeaker bool
	wellLoved  bool
	bpm        float64
	lastPad    string
	onHit      func(padID string)
	editing    Slot
	preset     int

	rec   *Recorder
	metro *Metronome
}

// Option configures a Toy.
type Option func(*Toy)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(t *Toy) { t.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(log *audio.Logger) Option {
	return func(t *Toy) { t.log = log }
}

// WithClock sets the clock used for jitter, playback and the metronome.
func WithClock(c Clock) Option {
	return func(t *Toy) { t.clock = c }
}

// WithRandom sets the randomness behind well-loved jitter.
func WithRandom(r audio.Random) Option {
	return func(t *Toy) { t.jitter.Rand = r }
}

// WithPads replaces the default pads.
func WithPads(pads []kit.Pad) Option {
	return func(t *Toy) { t.pads = kit.ClonePads(pads) }
}

// New creates a toy with a full battery and the default pads.
func New(player Player, opts ...Option) *Toy {
	t := &Toy{
		cfg:     DefaultConfig(),
		log:     audio.DefaultLogger(),
		player:  player,
		clock:   realClock{},
		pads:    kit.DefaultPads(),
		battery: audio.FullBattery,
	}
	t.jitter.Rand = common.NewSeededRNG(uint32(time.Now().UnixNano()))
	for _, opt := range opts {
		opt(t)
	}
	t.jitter.Chance = t.cfg.JitterChance
	t.jitter.Max = t.cfg.MaxJitter
	t.bpm = t.cfg.BPM
	t.rec = newRecorder(t.clock, t.cfg, t.log)
	t.metro = &Metronome{toy: t}
	return t
}

// TriggerPad hits a pad. It reports false when the pad does not exist or
// has no sound yet. In well-loved mode the hit may land late.
func (t *Toy) TriggerPad(id string) bool {
	t.mu.Lock()
	pad, ok := kit.Find(t.pads, id)
	wellLoved := t.wellLoved
	t.mu.Unlock()
	if !ok || pad.Sound == nil {
		return false
	}

	fire := func() { t.hit(pad) }
	if wellLoved {
		if d, late := t.jitter.Delay(); late {
			t.log.Debug("late hit", "pad", id, "delay", d)
			t.clock.AfterFunc(d, fire)
			return true
		}
	}
	fire()
	return true
}

func (t *Toy) hit(pad kit.Pad) {
	t.rec.RecordNote(pad.ID, 1)

	t.mu.Lock()
	battery := t.drain()
	toySpeaker := t.toySpeaker
	t.lastPad = pad.ID
	onHit := t.onHit
	t.mu.Unlock()

	t.player.Trigger(context.Background(), pad.Request(toySpeaker, battery))
	if onHit != nil {
		onHit(pad.ID)
	}
}

// drain takes one hit's worth of charge and returns the level before it.
// Callers hold t.mu.
func (t *Toy) drain() float64 {
	level := t.battery
	t.battery = math.Max(0, level-t.cfg.BatteryDrain)
	return level
}

// OnHit registers a callback run after every pad hit.
func (t *Toy) OnHit(f func(padID string)) {
	t.mu.Lock()
	t.onHit = f
	t.mu.Unlock()
}

// Pads returns a copy of the pads.
func (t *Toy) Pads() []kit.Pad {
	t.mu.Lock()
	defer t.mu.Unlock()
	return kit.ClonePads(t.pads)
}

// SetPads replaces all pads, e.g. after loading a kit.
func (t *Toy) SetPads(pads []kit.Pad) {
	t.mu.Lock()
	t.pads = kit.ClonePads(pads)
	t.mu.Unlock()
}

// Battery returns the battery level, 0..100.
func (t *Toy) Battery() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.battery
}

// SetBattery sets the battery level, clamped to 0..100.
func (t *Toy) SetBattery(level float64) {
	t.mu.Lock()
	t.battery = math.Min(math.Max(level, 0), audio.FullBattery)
	t.mu.Unlock()
}

// LowBattery reports whether the LCD should flicker.
func (t *Toy) LowBattery() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.battery < t.cfg.LowBattery
}

// ToySpeaker reports whether sounds go through the toy speaker.
func (t *Toy) ToySpeaker() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.toySpeaker
}

// SetToySpeaker switches the toy speaker on or off.
func (t *Toy) SetToySpeaker(on bool) {
	t.mu.Lock()
	t.toySpeaker = on
	t.mu.Unlock()
}

// WellLoved reports whether hits may land late.
func (t *Toy) WellLoved() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wellLoved
}

// SetWellLoved switches well-loved mode on or off.
func (t *Toy) SetWellLoved(on bool) {
	t.mu.Lock()
	t.wellLoved = on
	t.mu.Unlock()
}

// BPM returns the tempo.
func (t *Toy) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// SetBPM changes the tempo. Non-positive values are ignored.
func (t *Toy) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	t.mu.Lock()
	t.bpm = bpm
	t.mu.Unlock()
}

// LastPad returns the ID of the last pad that sounded.
func (t *Toy) LastPad() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastPad
}

// Recorder returns the tap recorder.
func (t *Toy) Recorder() *Recorder { return t.rec }

// Metronome returns the metronome.
func (t *Toy) Metronome() *Metronome { return t.metro }

// Play plays the recording back at the current tempo.
func (t *Toy) Play() bool {
	return t.rec.Play(t.BPM(), t.TriggerPad)
}

// Close stops playback and the metronome.
func (t *Toy) Close() {
	t.rec.Stop()
	t.metro.Stop()
}
