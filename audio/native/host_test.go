package native

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simukka/drumpal/audio"
)

func newTestRig() (*Host, *audio.Engine, *Timeline) {
	h := New(WithSampleRate(8000), WithSeed(42))
	tl := NewTimeline()
	e := audio.NewEngine(h, audio.WithClock(tl), audio.WithLogger(slog.New(slog.DiscardHandler)))
	return h, e, tl
}

func kick() *audio.SoundDescriptor {
	return &audio.SoundDescriptor{
		Instrument: audio.MembraneSynth,
		Options:    audio.Options{"pitchDecay": 0.05, "octaves": 10.0},
		Duration:   audio.Secs(0.4),
		Note:       "C2",
	}
}

func finite(samples []float32) bool {
	for _, s := range samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return false
		}
	}
	return true
}

// TestHost_Render_Kick renders one kick through the engine and checks
// that nodes are released on the render timeline.
func TestHost_Render_Kick(t *testing.T) {
	h, e, tl := newTestRig()

	var handle *audio.Handle
	out := h.Record(3*time.Second, func(now time.Duration) {
		if handle == nil {
			handle = e.Trigger(context.Background(), audio.NewRequest(kick()))
		}
		tl.AdvanceTo(now)
	})
	if handle == nil {
		t.Fatal("Expected the kick to be triggered")
	}
	if p := Peak(out[:4000]); p < 0.1 {
		t.Errorf("Expected an audible kick, peak %v", p)
	}
	if !finite(out) {
		t.Error("Render produced NaN or Inf")
	}
	if !handle.Disposed() {
		t.Error("Expected disposal within the render")
	}

	e.Shutdown()
	if n := h.Live(); n != 0 {
		t.Errorf("Expected no live nodes after shutdown, got %d", n)
	}
}

func TestHost_Render_SilentWhenSuspended(t *testing.T) {
	h := New()
	out := make([]float32, 512)
	out[0] = 1
	h.Render(out)
	if Peak(out) != 0 {
		t.Error("Expected silence from a suspended context")
	}
	if h.Now() != 0 {
		t.Error("Clock should not advance while suspended")
	}
}

// TestHost_Effects_Render pushes a note through every effect kind.
func TestHost_Effects_Render(t *testing.T) {
	for _, kind := range audio.Effects {
		h, e, tl := newTestRig()
		sound := &audio.SoundDescriptor{
			Instrument: audio.Synth,
			Options:    audio.Options{},
			Effects:    []audio.EffectDescriptor{{Type: kind, Options: audio.Options{}}},
			Duration:   audio.Notation("8n"),
		}
		triggered := false
		out := h.Record(time.Second, func(now time.Duration) {
			if !triggered {
				e.Trigger(context.Background(), audio.NewRequest(sound))
				triggered = true
			}
			tl.AdvanceTo(now)
		})
		if !finite(out) {
			t.Errorf("%s: render produced NaN or Inf", kind)
		}
		if RMS(out) == 0 {
			t.Errorf("%s: expected signal", kind)
		}
		e.Shutdown()
	}
}

// TestHost_Instruments_Render sounds every instrument kind.
func TestHost_Instruments_Render(t *testing.T) {
	for _, kind := range audio.Instruments {
		h, e, tl := newTestRig()
		sound := &audio.SoundDescriptor{Instrument: kind, Options: audio.Options{}, Note: "A3", Duration: audio.Secs(0.2)}
		triggered := false
		out := h.Record(500*time.Millisecond, func(now time.Duration) {
			if !triggered {
				e.Trigger(context.Background(), audio.NewRequest(sound))
				triggered = true
			}
			tl.AdvanceTo(now)
		})
		if Peak(out) == 0 {
			t.Errorf("%s: expected sound", kind)
		}
		if !finite(out) {
			t.Errorf("%s: render produced NaN or Inf", kind)
		}
		e.Shutdown()
	}
}

// TestHost_ToySpeaker_Hiss keeps hissing only while the chain lives.
func TestHost_ToySpeaker_Hiss(t *testing.T) {
	h, e, tl := newTestRig()
	req := audio.NewRequest(&audio.SoundDescriptor{Instrument: audio.NoiseSynth, Options: audio.Options{}, Duration: audio.Secs(0.05)})
	req.ToySpeaker = true

	triggered := false
	out := h.Record(4*time.Second, func(now time.Duration) {
		if !triggered {
			e.Trigger(context.Background(), req)
			triggered = true
		}
		tl.AdvanceTo(now)
	})
	sr := h.SampleRate()
	if RMS(out[sr:2*sr]) == 0 {
		t.Error("Expected hiss while the speaker chain is alive")
	}
	if RMS(out[3*sr:]) != 0 {
		t.Error("Expected silence after the speaker chain was disposed")
	}
}

func TestHost_Dispose_Twice(t *testing.T) {
	h := New()
	n, _ := h.NewGain(0.5)
	if err := n.Dispose(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := n.Dispose(); err == nil {
		t.Error("Expected an error on second dispose")
	}
	if err := n.Connect(h.Destination()); err == nil {
		t.Error("Expected connecting a disposed node to fail")
	}
}

func TestHost_Connect_Foreign(t *testing.T) {
	a, b := New(), New()
	n, _ := a.NewGain(1)
	if err := n.Connect(b.Destination()); err == nil {
		t.Error("Expected connecting across hosts to fail")
	}
}

func TestHost_Trigger_BadNote(t *testing.T) {
	h := New()
	inst, _ := h.NewInstrument(audio.Synth, audio.Options{})
	err := inst.(audio.Triggerer).TriggerAttackRelease(audio.Strike{Form: audio.NoteAndDuration, Note: "X9", Duration: audio.Secs(0.1)})
	if err == nil {
		t.Error("Expected an error for an unparsable note")
	}
}

func TestEnvelope_Level(t *testing.T) {
	env := envelope{attack: 0.1, decay: 0.1, sustain: 0.5, release: 0.2}
	tests := []struct {
		t, want float64
		done    bool
	}{
		{0.05, 0.5, false},
		{0.1, 1, false},
		{0.15, 0.75, false},
		{0.3, 0.5, false},
		{0.5, 0.25, false},
		{0.7, 0, true},
	}
	for _, tt := range tests {
		got, done := env.level(tt.t, 0.4)
		if math.Abs(got-tt.want) > 1e-9 || done != tt.done {
			t.Errorf("t=%v: expected %v (done=%v), got %v (done=%v)", tt.t, tt.want, tt.done, got, done)
		}
	}
}

func TestTimeline_AdvanceTo(t *testing.T) {
	tl := NewTimeline()
	var fired []int
	tl.AfterFunc(2*time.Second, func() { fired = append(fired, 2) })
	tl.AfterFunc(time.Second, func() { fired = append(fired, 1) })
	stopped := tl.AfterFunc(time.Second, func() { fired = append(fired, 99) })
	stopped.Stop()

	if tl.Pending() != 2 {
		t.Errorf("Expected 2 pending timers, got %d", tl.Pending())
	}
	tl.AdvanceTo(3 * time.Second)
	if len(fired) != 2 || fired[0] != 1 || fired[1] != 2 {
		t.Errorf("Expected timers in order [1 2], got %v", fired)
	}
	tl.AdvanceTo(time.Second)
	if tl.Now() != 3*time.Second {
		t.Error("Timeline moved backwards")
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kick.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	samples := make([]float32, 800)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) / 10))
	}
	if err := WriteWAV(f, samples, 8000); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Contains(data[:16], []byte("WAVE")) {
		t.Error("Expected a RIFF/WAVE header")
	}
	if len(data) < 44+len(samples)*2 {
		t.Errorf("Expected at least %d bytes, got %d", 44+len(samples)*2, len(data))
	}
}
