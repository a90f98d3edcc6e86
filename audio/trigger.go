package audio

// convention turns a descriptor into the strike an instrument kind
// expects. ok=false means the instrument should stay silent.
type convention func(d *SoundDescriptor, dur Duration, cfg Config) (s Strike, ok bool)

func membraneStrike(d *SoundDescriptor, dur Duration, cfg Config) (Strike, bool) {
	return Strike{Form: NoteAndDuration, Note: orDefault(d.Note, cfg.MembraneNote), Duration: dur}, true
}

func unpitchedStrike(_ *SoundDescriptor, dur Duration, _ Config) (Strike, bool) {
	return Strike{Form: DurationOnly, Duration: dur}, true
}

// Plucked strings ring out on their own envelope; only the note matters.
func pluckStrike(d *SoundDescriptor, _ Duration, _ Config) (Strike, bool) {
	if d.Note == "" {
		return Strike{}, false
	}
	return Strike{Form: NoteOnly, Note: d.Note}, true
}

func tonalStrike(d *SoundDescriptor, dur Duration, cfg Config) (Strike, bool) {
	return Strike{Form: NoteAndDuration, Note: orDefault(d.Note, cfg.TonalNote), Duration: dur}, true
}

func genericStrike(d *SoundDescriptor, dur Duration, _ Config) (Strike, bool) {
	return Strike{Form: NoteAndDuration, Note: d.Note, Duration: dur}, true
}

var conventions = map[InstrumentKind]convention{
	MembraneSynth: membraneStrike,
	NoiseSynth:    unpitchedStrike,
	MetalSynth:    unpitchedStrike,
	PluckSynth:    pluckStrike,
	Synth:         tonalStrike,
	FMSynth:       tonalStrike,
	AMSynth:       tonalStrike,
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Dispatcher fires instruments with their kind's calling convention.
type Dispatcher struct {
	cfg Config
	log *Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg Config, log *Logger) *Dispatcher {
	if log == nil {
		log = DefaultLogger()
	}
	return &Dispatcher{cfg: cfg, log: log}
}

// Duration returns the descriptor's duration or the configured default.
func (t *Dispatcher) Duration(d *SoundDescriptor) Duration {
	if d.Duration.IsZero() {
		return Secs(t.cfg.DefaultDuration)
	}
	return d.Duration
}

// Strike computes the strike for inst without firing it.
func (t *Dispatcher) Strike(inst Instrument, d *SoundDescriptor, at float64) (Strike, bool) {
	conv, ok := conventions[inst.Kind()]
	if !ok {
		conv = genericStrike
	}
	s, ok := conv(d, t.Duration(d), t.cfg)
	s.At = at
	return s, ok
}

// Trigger fires inst at the given host time. Failures are logged and
// reported as false; they never escape to the caller.
func (t *Dispatcher) Trigger(inst Instrument, d *SoundDescriptor, at float64) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("error triggering sound", "instrument", string(inst.Kind()), "err", panicError(r))
			fired = false
		}
	}()

	s, ok := t.Strike(inst, d, at)
	if !ok {
		t.log.Debug("nothing to trigger", "instrument", string(inst.Kind()))
		return false
	}
	trig, ok := inst.(Triggerer)
	if !ok {
		t.log.Warn("instrument cannot be triggered", "instrument", string(inst.Kind()), "err", ErrNoTrigger)
		return false
	}
	if err := trig.TriggerAttackRelease(s); err != nil {
		t.log.Error("error triggering sound", "instrument", string(inst.Kind()), "err", err)
		return false
	}
	return true
}
