package toy

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/simukka/drumpal/audio"
)

// State is the recorder state.
type State int

const (
	Stopped State = iota
	Recording
	Playing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Recording:
		return "RECORDING"
	case Playing:
		return "PLAYING"
	default:
		return "UNKNOWN"
	}
}

var ErrInvalidNote = errors.New("invalid note")

// Note is one recorded hit. Timestamp is in milliseconds from the start of
// the recording.
type Note struct {
	PadID     string  `json:"padId"`
	Timestamp float64 `json:"timestamp"`
	Velocity  float64 `json:"velocity,omitempty"`
}

// Validate checks that the note names a pad and is not before the start.
func (n Note) Validate() error {
	if n.PadID == "" {
		return fmt.Errorf("%w: missing pad", ErrInvalidNote)
	}
	if n.Timestamp < 0 {
		return fmt.Errorf("%w: negative timestamp", ErrInvalidNote)
	}
	return nil
}

// Sequence is an exported recording.
type Sequence struct {
	Notes     []Note    `json:"notes"`
	BPM       float64   `json:"bpm"`
	Duration  float64   `json:"duration"` // ms, timestamp of the last note
	CreatedAt time.Time `json:"createdAt"`
}

// Recorder captures pad hits and plays them back.
type Recorder struct {
	clock Clock
	cfg   Config
	log   *audio.Logger

	mu     sync.Mutex
	state  State
	notes  []Note
	start  time.Time
	timers []audio.Timer
	gen    uint64 // bumped on Stop so stale playback callbacks do nothing
}

func newRecorder(clock Clock, cfg Config, log *audio.Logger) *Recorder {
	return &Recorder{clock: clock, cfg: cfg, log: log}
}

// State returns the current state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Notes returns a copy of the recorded notes.
func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Note(nil), r.notes...)
}

// Record toggles recording. Starting a recording discards the previous
// one. It does nothing while playing.
func (r *Recorder) Record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case Stopped:
		r.state = Recording
		r.notes = nil
		r.start = r.clock.Now()
	case Recording:
		r.state = Stopped
	}
}

// RecordNote adds a hit to the recording. Outside recording it is a no-op.
func (r *Recorder) RecordNote(padID string, velocity float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording {
		return
	}
	note := Note{
		PadID:     padID,
		Timestamp: float64(r.clock.Now().Sub(r.start)) / float64(time.Millisecond),
		Velocity:  velocity,
	}
	if err := note.Validate(); err != nil {
		r.log.Error("invalid note data", "pad", padID, "err", err)
		return
	}
	r.notes = append(r.notes, note)
}

// Play schedules every recorded note through trigger, scaled so that the
// reference tempo plays back as recorded. The recorder returns to
// Stopped after the last note plus the playback tail. It reports false
// when not stopped or when there is nothing to play.
func (r *Recorder) Play(bpm float64, trigger func(padID string) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Stopped || len(r.notes) == 0 || bpm <= 0 {
		return false
	}
	r.state = Playing
	gen := r.gen
	speed := r.cfg.ReferenceBPM / bpm

	for _, n := range r.notes {
		padID := n.PadID
		at := msDuration(n.Timestamp * speed)
		r.timers = append(r.timers, r.clock.AfterFunc(at, func() {
			if r.current(gen) {
				trigger(padID)
			}
		}))
	}
	total := msDuration(r.notes[len(r.notes)-1].Timestamp*speed) + r.cfg.PlaybackTail
	r.timers = append(r.timers, r.clock.AfterFunc(total, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.gen == gen && r.state == Playing {
			r.state = Stopped
			r.timers = nil
		}
	}))
	return true
}

func (r *Recorder) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen == gen && r.state == Playing
}

// Stop cancels playback or recording.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
	r.gen++
	r.state = Stopped
}

// Export returns the recording, or false if nothing was recorded.
func (r *Recorder) Export(bpm float64) (Sequence, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Sequence{}, false
	}
	return Sequence{
		Notes:     append([]Note(nil), r.notes...),
		BPM:       bpm,
		Duration:  r.notes[len(r.notes)-1].Timestamp,
		CreatedAt: r.clock.Now(),
	}, true
}

// Import replaces the recording with seq. Every note must be valid.
func (r *Recorder) Import(seq Sequence) error {
	for _, n := range seq.Notes {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Stopped {
		return fmt.Errorf("recorder busy: %s", r.state)
	}
	r.notes = sortNotes(seq.Notes)
	return nil
}

// ParseSequence decodes an exported sequence, validating and ordering its
// notes.
func ParseSequence(data []byte) (Sequence, error) {
	var seq Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return Sequence{}, fmt.Errorf("decode sequence: %w", err)
	}
	for _, n := range seq.Notes {
		if err := n.Validate(); err != nil {
			return Sequence{}, err
		}
	}
	seq.Notes = sortNotes(seq.Notes)
	return seq, nil
}

func sortNotes(notes []Note) []Note {
	notes = append([]Note(nil), notes...)
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Timestamp < notes[j].Timestamp })
	return notes
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
