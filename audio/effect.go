package audio

// EffectFactory builds live effect nodes from effect descriptors.
type EffectFactory struct {
	host Host
	log  *Logger
}

// NewEffectFactory creates an effect factory on host.
func NewEffectFactory(host Host, log *Logger) *EffectFactory {
	if log == nil {
		log = DefaultLogger()
	}
	return &EffectFactory{host: host, log: log}
}

// Create builds one effect. Unknown types and host failures yield nil.
func (f *EffectFactory) Create(e EffectDescriptor) (n Node) {
	if !e.Type.Known() {
		f.log.Warn("unsupported effect, skipping", "effect", string(e.Type))
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("effect construction failed", "effect", string(e.Type), "err", panicError(r))
			n = nil
		}
	}()
	opts := e.Options.Clone()
	if opts == nil {
		opts = Options{}
	}
	node, err := f.host.NewEffect(e.Type, opts)
	if err != nil {
		f.log.Error("effect construction failed", "effect", string(e.Type), "err", err)
		return nil
	}
	return node
}

// Chain builds every effect in order, dropping the ones that could not be
// built. The result preserves the relative order of the survivors.
func (f *EffectFactory) Chain(effects []EffectDescriptor) []Node {
	if len(effects) == 0 {
		return nil
	}
	chain := make([]Node, 0, len(effects))
	for _, e := range effects {
		if n := f.Create(e); n != nil {
			chain = append(chain, n)
		}
	}
	return chain
}
