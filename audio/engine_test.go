package audio

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func membraneKick() *SoundDescriptor {
	return &SoundDescriptor{
		Instrument: MembraneSynth,
		Options:    Options{"pitchDecay": 0.05, "octaves": 10.0},
		Duration:   Secs(0.4),
		Note:       "C2",
	}
}

// TestEngine_Trigger_MembraneEndToEnd plays a kick with no effects and
// follows it through wiring, strike and deferred disposal.
func TestEngine_Trigger_MembraneEndToEnd(t *testing.T) {
	e, host, clock := newTestEngine()

	h := e.Trigger(context.Background(), NewRequest(membraneKick()))
	if h == nil {
		t.Fatal("Expected a handle, got nil")
	}
	if host.State() != StateRunning {
		t.Errorf("Expected context to be started, got %q", host.State())
	}
	if n := host.Count("create"); n != 1 {
		t.Errorf("Expected 1 node created, got %d", n)
	}

	inst := instrumentNode(host, MembraneSynth)
	if inst == nil {
		t.Fatal("Expected a MembraneSynth node")
	}
	if got := inst.Path(); !reflect.DeepEqual(got, []string{"MembraneSynth", "Destination"}) {
		t.Errorf("Expected direct wire to destination, got %v", got)
	}

	want := Strike{Form: NoteAndDuration, Note: "C2", Duration: Secs(0.4), At: 0}
	if len(inst.Strikes) != 1 || inst.Strikes[0] != want {
		t.Errorf("Expected strike %+v, got %+v", want, inst.Strikes)
	}

	if e.Pending() != 1 {
		t.Errorf("Expected 1 pending disposal, got %d", e.Pending())
	}

	clock.Advance(2399 * time.Millisecond)
	if h.Disposed() {
		t.Error("Disposal fired before 2400ms")
	}
	clock.Advance(time.Millisecond)
	if !h.Disposed() {
		t.Fatal("Expected disposal at 2400ms")
	}
	if e.Pending() != 0 {
		t.Errorf("Expected no pending disposal, got %d", e.Pending())
	}
	if len(inst.Outputs()) != 0 {
		t.Error("Expected cached instrument to be disconnected after its lifetime")
	}
	if inst.Disposed() {
		t.Error("Cached instrument should stay alive until shutdown")
	}
}

// TestEngine_Trigger_EffectChainOrder verifies that unknown effects are
// skipped and the survivors keep their relative order.
func TestEngine_Trigger_EffectChainOrder(t *testing.T) {
	e, host, _ := newTestEngine()

	sound := &SoundDescriptor{
		Instrument: Synth,
		Options:    Options{},
		Effects: []EffectDescriptor{
			{Type: Reverb, Options: Options{"decay": 1.5}},
			{Type: "Wobbler", Options: Options{}},
			{Type: Chorus, Options: Options{"frequency": 4.0}},
		},
	}
	if e.Trigger(context.Background(), NewRequest(sound)) == nil {
		t.Fatal("Expected a handle, got nil")
	}

	inst := instrumentNode(host, Synth)
	want := []string{"Synth", "Reverb", "Chorus", "Destination"}
	if got := inst.Path(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected path %v, got %v", want, got)
	}
	if s := inst.Strikes[0]; s.Note != "C4" || s.Duration != Secs(0.2) {
		t.Errorf("Expected default C4 for 0.2s, got %s for %s", s.Note, s.Duration)
	}
}

// TestEngine_Trigger_UnknownInstrumentFallsBack plays the fallback
// membrane instead of failing.
func TestEngine_Trigger_UnknownInstrumentFallsBack(t *testing.T) {
	e, host, _ := newTestEngine()

	sound := &SoundDescriptor{Instrument: "Theremin", Options: Options{}}
	if e.Trigger(context.Background(), NewRequest(sound)) == nil {
		t.Fatal("Expected a handle, got nil")
	}
	inst := instrumentNode(host, FallbackInstrument)
	if inst == nil {
		t.Fatal("Expected the fallback instrument to be built")
	}
	if len(inst.Strikes) != 1 || inst.Strikes[0].Note != "C2" {
		t.Errorf("Expected fallback strike at C2, got %+v", inst.Strikes)
	}
}

// TestEngine_Trigger_ToySpeaker wires the degradation chain between the
// effects and the destination and disposes it with the trigger.
func TestEngine_Trigger_ToySpeaker(t *testing.T) {
	e, host, clock := newTestEngine()

	req := NewRequest(membraneKick())
	req.ToySpeaker = true
	h := e.Trigger(context.Background(), req)
	if h == nil {
		t.Fatal("Expected a handle, got nil")
	}

	inst := instrumentNode(host, MembraneSynth)
	want := []string{"MembraneSynth", "BitCrusher", "Filter", "Distortion", "Destination"}
	if got := inst.Path(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected path %v, got %v", want, got)
	}

	noise := nodesLabeled(host, "Noise")
	if len(noise) != 1 {
		t.Fatalf("Expected 1 noise source, got %d", len(noise))
	}
	if got := noise[0].Path(); !reflect.DeepEqual(got, []string{"Noise", "Gain", "Distortion", "Destination"}) {
		t.Errorf("Expected hiss mixed before distortion, got %v", got)
	}
	if noise[0].Options.String("type") != "pink" {
		t.Errorf("Expected pink noise, got %q", noise[0].Options.String("type"))
	}

	filter := nodesLabeled(host, "Filter")[0]
	if f, _ := filter.Options.Number("frequency"); f != 4100 {
		t.Errorf("Expected band center 4100, got %v", f)
	}

	clock.Advance(2400 * time.Millisecond)
	for _, label := range []string{"BitCrusher", "Filter", "Distortion", "Noise", "Gain"} {
		for _, n := range nodesLabeled(host, label) {
			if !n.Disposed() {
				t.Errorf("Expected %s to be disposed", label)
			}
		}
	}
}

// TestEngine_Trigger_BatteryWear checks detune at several battery levels.
func TestEngine_Trigger_BatteryWear(t *testing.T) {
	tests := []struct {
		battery float64
		base    float64
		want    float64
	}{
		{battery: 100, want: 0},
		{battery: 20, want: 0},
		{battery: 10, want: -100},
		{battery: 0, want: -200},
		{battery: 10, base: 50, want: -50},
	}
	for _, tt := range tests {
		e, host, _ := newTestEngine()
		sound := membraneKick()
		if tt.base != 0 {
			sound.Options["detune"] = tt.base
		}
		req := NewRequest(sound)
		req.Battery = tt.battery
		e.Trigger(context.Background(), req)

		got, _ := instrumentNode(host, MembraneSynth).Options.Number("detune")
		if got != tt.want {
			t.Errorf("battery %v base %v: expected detune %v, got %v", tt.battery, tt.base, tt.want, got)
		}
	}
}

// TestEngine_Trigger_NoiseIgnoresBattery leaves unpitched instruments alone.
func TestEngine_Trigger_NoiseIgnoresBattery(t *testing.T) {
	e, host, _ := newTestEngine()
	req := NewRequest(&SoundDescriptor{Instrument: NoiseSynth, Options: Options{}})
	req.Battery = 0
	e.Trigger(context.Background(), req)

	inst := instrumentNode(host, NoiseSynth)
	if _, ok := inst.Options["detune"]; ok {
		t.Error("NoiseSynth should not be detuned")
	}
	if inst.Strikes[0].Form != DurationOnly {
		t.Errorf("Expected duration-only strike, got %s", inst.Strikes[0].Form)
	}
}

// TestEngine_Trigger_PluckIgnoresBattery leaves the plucked string in tune:
// it has no detune parameter to bend.
func TestEngine_Trigger_PluckIgnoresBattery(t *testing.T) {
	e, host, _ := newTestEngine()
	req := NewRequest(&SoundDescriptor{Instrument: PluckSynth, Options: Options{}, Note: "E3"})
	req.Battery = 0
	e.Trigger(context.Background(), req)

	inst := instrumentNode(host, PluckSynth)
	if _, ok := inst.Options["detune"]; ok {
		t.Error("PluckSynth should not be detuned")
	}
	if len(inst.Strikes) != 1 {
		t.Errorf("Expected the pluck to sound, got %d strikes", len(inst.Strikes))
	}
}

// TestEngine_Trigger_Pluck needs a note to sound.
func TestEngine_Trigger_Pluck(t *testing.T) {
	e, host, _ := newTestEngine()

	e.Trigger(context.Background(), NewRequest(&SoundDescriptor{Instrument: PluckSynth, Options: Options{}}))
	inst := instrumentNode(host, PluckSynth)
	if len(inst.Strikes) != 0 {
		t.Errorf("Expected no strike without a note, got %+v", inst.Strikes)
	}

	e.Trigger(context.Background(), NewRequest(&SoundDescriptor{Instrument: PluckSynth, Options: Options{}, Note: "E3"}))
	if len(inst.Strikes) != 1 || inst.Strikes[0].Form != NoteOnly || inst.Strikes[0].Note != "E3" {
		t.Errorf("Expected note-only strike at E3, got %+v", inst.Strikes)
	}
}

// TestEngine_Trigger_NotationDuration resolves "8n" at the host tempo.
func TestEngine_Trigger_NotationDuration(t *testing.T) {
	e, _, clock := newTestEngine()
	sound := membraneKick()
	sound.Duration = Notation("8n")

	h := e.Trigger(context.Background(), NewRequest(sound))
	clock.Advance(2249 * time.Millisecond)
	if h.Disposed() {
		t.Error("Disposal fired before 2250ms")
	}
	clock.Advance(time.Millisecond)
	if !h.Disposed() {
		t.Error("Expected disposal at 2250ms")
	}
}

// TestEngine_Trigger_CachedReroute keeps a reused instrument connected
// while a newer trigger still owns it.
func TestEngine_Trigger_CachedReroute(t *testing.T) {
	e, host, clock := newTestEngine()

	first := e.Trigger(context.Background(), NewRequest(membraneKick()))
	clock.Advance(time.Second)
	second := e.Trigger(context.Background(), NewRequest(membraneKick()))

	if e.CachedInstruments() != 1 {
		t.Errorf("Expected 1 cached instrument, got %d", e.CachedInstruments())
	}
	inst := instrumentNode(host, MembraneSynth)
	if len(inst.Strikes) != 2 {
		t.Errorf("Expected 2 strikes on the cached instrument, got %d", len(inst.Strikes))
	}

	clock.Advance(1400 * time.Millisecond)
	if !first.Disposed() {
		t.Fatal("Expected first trigger to be released")
	}
	if len(inst.Outputs()) != 1 {
		t.Errorf("Expected instrument to stay wired for the second trigger, got %d outputs", len(inst.Outputs()))
	}

	clock.Advance(time.Second)
	if !second.Disposed() {
		t.Fatal("Expected second trigger to be released")
	}
	if len(inst.Outputs()) != 0 {
		t.Error("Expected instrument to be disconnected after the last trigger")
	}
}

// TestEngine_Trigger_CacheFullDisposesInstrument owns instruments built
// past the cache bound.
func TestEngine_Trigger_CacheFullDisposesInstrument(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheLimit = 1
	e, host, clock := newTestEngine(WithConfig(cfg))

	e.Trigger(context.Background(), NewRequest(membraneKick()))
	other := membraneKick()
	other.Options["octaves"] = 4.0
	e.Trigger(context.Background(), NewRequest(other))

	if e.CachedInstruments() != 1 {
		t.Errorf("Expected cache to stop at 1, got %d", e.CachedInstruments())
	}
	clock.Advance(2400 * time.Millisecond)

	insts := nodesLabeled(host, "MembraneSynth")
	if len(insts) != 2 {
		t.Fatalf("Expected 2 instruments, got %d", len(insts))
	}
	if insts[0].Disposed() {
		t.Error("Cached instrument should not be disposed")
	}
	if !insts[1].Disposed() {
		t.Error("Uncached instrument should be disposed with its trigger")
	}
}

// TestEngine_Trigger_Morph blends the two descriptors before building.
func TestEngine_Trigger_Morph(t *testing.T) {
	e, host, _ := newTestEngine()
	req := NewRequest(membraneKick())
	target := membraneKick()
	target.Options["octaves"] = 2.0
	req.Morph = target
	req.Mix = 0.5

	e.Trigger(context.Background(), req)
	got, _ := instrumentNode(host, MembraneSynth).Options.Number("octaves")
	if got != 6 {
		t.Errorf("Expected octaves 6, got %v", got)
	}
}

// TestEngine_Trigger_NilSound does nothing.
func TestEngine_Trigger_NilSound(t *testing.T) {
	e, host, _ := newTestEngine()
	if h := e.Trigger(context.Background(), Request{}); h != nil {
		t.Error("Expected nil handle for missing sound")
	}
	if len(host.Events()) != 0 {
		t.Errorf("Expected no host activity, got %v", host.Events())
	}
}

// TestEngine_Trigger_StartFailure skips the sound when the context
// cannot start.
func TestEngine_Trigger_StartFailure(t *testing.T) {
	e, host, _ := newTestEngine()
	host.StartErr = errors.New("autoplay blocked")

	if h := e.Trigger(context.Background(), NewRequest(membraneKick())); h != nil {
		t.Error("Expected nil handle when the context cannot start")
	}
	if host.Count("create") != 0 {
		t.Error("Expected no nodes to be built")
	}

	host.StartErr = nil
	if h := e.Trigger(context.Background(), NewRequest(membraneKick())); h == nil {
		t.Error("Expected the next trigger to retry the start")
	}
}

// TestEngine_Trigger_TriggerFailureStillDisposes keeps the lifecycle
// intact when the strike itself fails.
func TestEngine_Trigger_TriggerFailureStillDisposes(t *testing.T) {
	e, host, clock := newTestEngine()
	host.TriggerErr = errors.New("bad note")

	sound := membraneKick()
	sound.Effects = []EffectDescriptor{{Type: Reverb, Options: Options{}}}
	h := e.Trigger(context.Background(), NewRequest(sound))
	if h == nil {
		t.Fatal("Expected a handle, got nil")
	}
	clock.Advance(2400 * time.Millisecond)
	if !nodesLabeled(host, "Reverb")[0].Disposed() {
		t.Error("Expected effect to be disposed after a failed strike")
	}
}

// TestEngine_Shutdown disposes everything immediately and drops later
// triggers.
func TestEngine_Shutdown(t *testing.T) {
	e, host, _ := newTestEngine()

	sound := membraneKick()
	sound.Effects = []EffectDescriptor{{Type: Reverb, Options: Options{}}}
	h1 := e.Trigger(context.Background(), NewRequest(sound))
	h2 := e.Trigger(context.Background(), NewRequest(&SoundDescriptor{Instrument: NoiseSynth, Options: Options{}}))

	e.Shutdown()
	if !h1.Disposed() || !h2.Disposed() {
		t.Error("Expected all pending triggers to be released")
	}
	if e.Pending() != 0 {
		t.Errorf("Expected no pending disposal, got %d", e.Pending())
	}
	if e.CachedInstruments() != 0 {
		t.Errorf("Expected empty cache, got %d", e.CachedInstruments())
	}
	if len(host.Live()) != 0 {
		t.Errorf("Expected no live nodes, got %d", len(host.Live()))
	}

	if h := e.Trigger(context.Background(), NewRequest(membraneKick())); h != nil {
		t.Error("Expected triggers after shutdown to be dropped")
	}
	e.Shutdown()
}

// stoppingHost shuts the engine down while its context is starting, as
// a page unload during the first click does.
type stoppingHost struct {
	*HeadlessHost
	e *Engine
}

func (h *stoppingHost) Start(ctx context.Context) error {
	h.e.Shutdown()
	return h.HeadlessHost.Start(ctx)
}

// TestEngine_Trigger_ShutdownDuringStart drops a trigger whose engine was
// shut down while it waited for the context.
func TestEngine_Trigger_ShutdownDuringStart(t *testing.T) {
	host := &stoppingHost{HeadlessHost: NewHeadlessHost()}
	e := NewEngine(host, WithClock(&fakeClock{}), WithLogger(quietLog()))
	host.e = e

	if h := e.Trigger(context.Background(), NewRequest(membraneKick())); h != nil {
		t.Error("Expected nil handle after shutdown during start")
	}
	if e.Pending() != 0 {
		t.Errorf("Expected no pending disposal, got %d", e.Pending())
	}
	if e.CachedInstruments() != 0 {
		t.Errorf("Expected empty cache, got %d", e.CachedInstruments())
	}
	if n := len(host.Live()); n != 0 {
		t.Errorf("Expected no live nodes, got %d", n)
	}
}

// TestEngine_Trigger_HandleCancel cuts one sound short.
func TestEngine_Trigger_HandleCancel(t *testing.T) {
	e, host, clock := newTestEngine()
	sound := membraneKick()
	sound.Effects = []EffectDescriptor{{Type: FeedbackDelay, Options: Options{}}}

	h := e.Trigger(context.Background(), NewRequest(sound))
	h.Cancel()
	if !nodesLabeled(host, "FeedbackDelay")[0].Disposed() {
		t.Error("Expected cancel to dispose immediately")
	}
	clock.Advance(5 * time.Second)
	if n := host.Count("dispose"); n != 1 {
		t.Errorf("Expected exactly 1 dispose, got %d", n)
	}
}
