package audio

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Event is one operation recorded by the HeadlessHost.
type Event struct {
	Op     string // create, connect, disconnect, set, trigger, dispose, start
	Node   string
	Target string
	Detail string
}

func (ev Event) String() string {
	var b strings.Builder
	b.WriteString(ev.Op)
	b.WriteByte(' ')
	b.WriteString(ev.Node)
	if ev.Target != "" {
		b.WriteString(" -> ")
		b.WriteString(ev.Target)
	}
	if ev.Detail != "" {
		b.WriteString(" ")
		b.WriteString(ev.Detail)
	}
	return b.String()
}

// HeadlessHost is a Host that builds no sound. It records every graph
// operation so the graph a sound would build can be inspected, and it
// drives the runtime when no audio device is present.
type HeadlessHost struct {
	mu     sync.Mutex
	state  ContextState
	now    float64
	bpm    float64
	seq    int
	events []Event
	nodes  []*HeadlessNode
	dest   *HeadlessNode

	// StartErr, when set, makes Start fail.
	StartErr error
	// TriggerErr, when set, makes every instrument trigger fail.
	TriggerErr error
	// Reject lists kinds (instrument or effect) the host refuses to build.
	Reject map[string]bool
}

// NewHeadlessHost creates a suspended headless host.
func NewHeadlessHost() *HeadlessHost {
	h := &HeadlessHost{state: StateSuspended, bpm: DefaultConfig().BPM}
	h.dest = &HeadlessNode{host: h, ID: "Destination", Label: "Destination"}
	return h
}

// HeadlessNode is a recorded node.
type HeadlessNode struct {
	host     *HeadlessHost
	ID       string
	Label    string
	Options  Options
	kind     InstrumentKind
	outputs  []*HeadlessNode
	disposed bool
	Strikes  []Strike
}

func (h *HeadlessHost) record(ev Event) {
	h.events = append(h.events, ev)
}

func (h *HeadlessHost) newNode(label string, opts Options) *HeadlessNode {
	h.seq++
	n := &HeadlessNode{
		host:    h,
		ID:      fmt.Sprintf("%s#%d", label, h.seq),
		Label:   label,
		Options: opts,
	}
	h.nodes = append(h.nodes, n)
	h.record(Event{Op: "create", Node: n.ID, Detail: opts.Fingerprint()})
	return n
}

func (h *HeadlessHost) NewInstrument(kind InstrumentKind, opts Options) (Instrument, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Reject[string(kind)] {
		return nil, NewNodeError("create", string(kind), ErrUnknownInstrument)
	}
	n := h.newNode(string(kind), opts)
	n.kind = kind
	return n, nil
}

func (h *HeadlessHost) NewEffect(kind EffectKind, opts Options) (Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Reject[string(kind)] {
		return nil, NewNodeError("create", string(kind), ErrUnknownEffect)
	}
	return h.newNode(string(kind), opts), nil
}

func (h *HeadlessHost) NewFilter(opts Options) (Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.newNode("Filter", opts), nil
}

func (h *HeadlessHost) NewNoise(color string) (Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.newNode("Noise", Options{"type": color}), nil
}

func (h *HeadlessHost) NewGain(level float64) (Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.newNode("Gain", Options{"gain": level}), nil
}

func (h *HeadlessHost) Destination() Node { return h.dest }

func (h *HeadlessHost) Now() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

// SetNow moves the host clock.
func (h *HeadlessHost) SetNow(t float64) {
	h.mu.Lock()
	h.now = t
	h.mu.Unlock()
}

func (h *HeadlessHost) Seconds(d Duration) (float64, error) {
	if !d.IsNotation() {
		return d.Seconds, nil
	}
	return ParseNotation(d.Notation, h.bpm)
}

func (h *HeadlessHost) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Event{Op: "start", Node: "context"})
	if h.StartErr != nil {
		return h.StartErr
	}
	h.state = StateRunning
	return nil
}

func (h *HeadlessHost) State() ContextState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// SetState forces the context state.
func (h *HeadlessHost) SetState(s ContextState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// Events returns a copy of the recorded operations.
func (h *HeadlessHost) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

// Count returns how many recorded events have the given op.
func (h *HeadlessHost) Count(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, ev := range h.events {
		if ev.Op == op {
			n++
		}
	}
	return n
}

// Nodes returns every node ever created, in creation order.
func (h *HeadlessHost) Nodes() []*HeadlessNode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*HeadlessNode(nil), h.nodes...)
}

// Live returns the nodes not yet disposed.
func (h *HeadlessHost) Live() []*HeadlessNode {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*HeadlessNode
	for _, n := range h.nodes {
		if !n.disposed {
			out = append(out, n)
		}
	}
	return out
}

// Graph renders the live graph, one "node -> target" edge per line,
// sorted for stable output.
func (h *HeadlessHost) Graph() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var lines []string
	for _, n := range h.nodes {
		if n.disposed {
			continue
		}
		for _, o := range n.outputs {
			lines = append(lines, n.ID+" -> "+o.ID)
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// Path follows first outputs from n until a node without outputs and
// returns the labels visited, n included.
func (n *HeadlessNode) Path() []string {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	var out []string
	seen := map[*HeadlessNode]bool{}
	for cur := n; cur != nil && !seen[cur]; {
		seen[cur] = true
		out = append(out, cur.Label)
		if len(cur.outputs) == 0 {
			break
		}
		cur = cur.outputs[0]
	}
	return out
}

// Outputs returns the nodes n currently feeds.
func (n *HeadlessNode) Outputs() []*HeadlessNode {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	return append([]*HeadlessNode(nil), n.outputs...)
}

// Disposed reports whether the node was disposed.
func (n *HeadlessNode) Disposed() bool {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	return n.disposed
}

func (n *HeadlessNode) Kind() InstrumentKind { return n.kind }

func (n *HeadlessNode) Connect(dst Node) error {
	target, ok := dst.(*HeadlessNode)
	if !ok {
		if g, isGuard := dst.(*guard); isGuard {
			target, ok = g.Node.(*HeadlessNode)
		}
	}
	if !ok {
		return NewNodeError("connect", n.Label, fmt.Errorf("foreign node %T", dst))
	}
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	if n.disposed {
		return NewNodeError("connect", n.Label, ErrDisposed)
	}
	n.outputs = append(n.outputs, target)
	n.host.record(Event{Op: "connect", Node: n.ID, Target: target.ID})
	return nil
}

func (n *HeadlessNode) Disconnect() error {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	if len(n.outputs) > 0 {
		n.outputs = nil
		n.host.record(Event{Op: "disconnect", Node: n.ID})
	}
	return nil
}

func (n *HeadlessNode) Dispose() error {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	if n.disposed {
		return NewNodeError("dispose", n.Label, ErrDisposed)
	}
	n.disposed = true
	n.outputs = nil
	n.host.record(Event{Op: "dispose", Node: n.ID})
	return nil
}

func (n *HeadlessNode) Set(opts Options) error {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	if n.Options == nil {
		n.Options = Options{}
	}
	for k, v := range opts {
		n.Options[k] = v
	}
	n.host.record(Event{Op: "set", Node: n.ID, Detail: opts.Fingerprint()})
	return nil
}

func (n *HeadlessNode) TriggerAttackRelease(s Strike) error {
	n.host.mu.Lock()
	defer n.host.mu.Unlock()
	if n.disposed {
		return NewNodeError("trigger", n.Label, ErrDisposed)
	}
	if n.host.TriggerErr != nil {
		return n.host.TriggerErr
	}
	n.Strikes = append(n.Strikes, s)
	n.host.record(Event{
		Op:     "trigger",
		Node:   n.ID,
		Detail: fmt.Sprintf("%s note=%s dur=%s at=%g", s.Form, s.Note, s.Duration, s.At),
	})
	return nil
}
