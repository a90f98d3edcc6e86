package audio

import "sync"

// FallbackInstrument is built when a descriptor names an unknown kind.
const FallbackInstrument = MembraneSynth

// InstrumentFactory builds live instruments and caches them by the
// structural identity of (instrument, options).
type InstrumentFactory struct {
	host  Host
	log   *Logger
	limit int

	mu    sync.Mutex
	cache map[string]Instrument
	order []string // insertion order, used for shutdown
}

// NewInstrumentFactory creates a factory holding at most limit cached
// instruments. Once full, new instruments are still built but not cached.
func NewInstrumentFactory(host Host, limit int, log *Logger) *InstrumentFactory {
	if log == nil {
		log = DefaultLogger()
	}
	return &InstrumentFactory{
		host:  host,
		log:   log,
		limit: limit,
		cache: make(map[string]Instrument),
	}
}

// CacheKey returns the structural fingerprint of a descriptor's
// instrument and options.
func CacheKey(d *SoundDescriptor) string {
	return string(d.Instrument) + "_" + d.Options.Fingerprint()
}

// Create returns a live instrument for d. Unknown kinds fall back to
// FallbackInstrument. The second result reports whether the instrument
// belongs to the cache; an uncached instrument is owned by the caller.
// A nil instrument means the host itself failed.
func (f *InstrumentFactory) Create(d *SoundDescriptor) (Instrument, bool) {
	key := CacheKey(d)

	f.mu.Lock()
	defer f.mu.Unlock()

	if inst, ok := f.cache[key]; ok {
		return inst, true
	}

	kind := d.Instrument
	if !kind.Known() {
		f.log.Warn("unsupported instrument, using fallback",
			"instrument", string(kind), "fallback", string(FallbackInstrument))
		kind = FallbackInstrument
	}

	inst, err := f.build(kind, d.Options.Clone())
	if err != nil {
		f.log.Error("instrument construction failed", "instrument", string(kind), "err", err)
		return nil, false
	}

	if len(f.cache) >= f.limit {
		return inst, false
	}
	f.cache[key] = inst
	f.order = append(f.order, key)
	return inst, true
}

func (f *InstrumentFactory) build(kind InstrumentKind, opts Options) (inst Instrument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewNodeError("create", string(kind), panicError(r))
		}
	}()
	if opts == nil {
		opts = Options{}
	}
	return f.host.NewInstrument(kind, opts)
}

// Len returns the number of cached instruments.
func (f *InstrumentFactory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cache)
}

// Dispose releases every cached instrument and empties the cache.
func (f *InstrumentFactory) Dispose() {
	f.mu.Lock()
	keys := f.order
	cache := f.cache
	f.order = nil
	f.cache = make(map[string]Instrument)
	f.mu.Unlock()

	for _, k := range keys {
		if err := Guard(cache[k]).Dispose(); err != nil {
			f.log.Warn("dispose cached instrument failed", "err", err)
		}
	}
}
