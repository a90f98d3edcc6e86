package native

import (
	"fmt"
	"slices"

	"github.com/simukka/drumpal/audio"
)

// processor renders one block in place. buf holds the sum of the node's
// inputs on entry; frame is the absolute index of buf[0].
type processor interface {
	process(buf []float64, frame int64)
}

// node is a vertex of the pull graph. All fields are guarded by the
// owning Host's mutex.
type node struct {
	host    *Host
	label   string
	kind    audio.InstrumentKind
	proc    processor
	inputs  []*node
	outputs []*node

	disposed bool
	block    int64
	buf      []float64
}

func (h *Host) newNode(label string, proc processor) *node {
	h.live++
	return &node{host: h, label: label, proc: proc, block: -1}
}

// pull renders block b once and returns it. Nodes feeding several
// outputs are rendered a single time per block.
func (n *node) pull(b int64, size int, frame int64) []float64 {
	if n.block == b {
		return n.buf[:size]
	}
	n.block = b
	if cap(n.buf) < size {
		n.buf = make([]float64, size)
	}
	buf := n.buf[:size]
	clear(buf)
	for _, in := range n.inputs {
		for i, v := range in.pull(b, size, frame) {
			buf[i] += v
		}
	}
	if n.proc != nil {
		n.proc.process(buf, frame)
	}
	return buf
}

func (n *node) Connect(dst audio.Node) error {
	target, ok := dst.(*node)
	if !ok || target.host != n.host {
		return audio.NewNodeError("connect", n.label, fmt.Errorf("foreign node %T", dst))
	}
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	if n.disposed || target.disposed {
		return audio.NewNodeError("connect", n.label, audio.ErrDisposed)
	}
	n.outputs = append(n.outputs, target)
	target.inputs = append(target.inputs, n)
	return nil
}

func (n *node) Disconnect() error {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	n.detach()
	return nil
}

// detach removes every outgoing edge. Callers hold the host mutex.
func (n *node) detach() {
	for _, out := range n.outputs {
		out.inputs = slices.DeleteFunc(out.inputs, func(x *node) bool { return x == n })
	}
	n.outputs = nil
}

func (n *node) Dispose() error {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	if n.disposed {
		return audio.NewNodeError("dispose", n.label, audio.ErrDisposed)
	}
	n.detach()
	for _, in := range n.inputs {
		in.outputs = slices.DeleteFunc(in.outputs, func(x *node) bool { return x == n })
	}
	n.inputs = nil
	n.disposed = true
	n.host.live--
	return nil
}

func (n *node) Kind() audio.InstrumentKind { return n.kind }

func (n *node) Set(opts audio.Options) error {
	s, ok := n.proc.(*synth)
	if !ok {
		return audio.NewNodeError("set", n.label, fmt.Errorf("not an instrument"))
	}
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	s.set(opts)
	return nil
}

func (n *node) TriggerAttackRelease(st audio.Strike) error {
	s, ok := n.proc.(*synth)
	if !ok {
		return audio.NewNodeError("trigger", n.label, audio.ErrNoTrigger)
	}
	hold := 0.0
	if st.Form != audio.NoteOnly {
		secs, err := n.host.Seconds(st.Duration)
		if err != nil {
			return audio.NewNodeError("trigger", n.label, err)
		}
		hold = secs
	}
	freq := 0.0
	if st.Form != audio.DurationOnly {
		f, err := audio.NoteFrequency(st.Note)
		if err != nil {
			return audio.NewNodeError("trigger", n.label, err)
		}
		freq = f
	}

	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	if n.disposed {
		return audio.NewNodeError("trigger", n.label, audio.ErrDisposed)
	}
	start := int64(st.At * float64(n.host.sampleRate))
	if start < n.host.frame {
		start = n.host.frame
	}
	s.strike(start, freq, hold)
	return nil
}
