package tone

import (
	"fmt"

	"github.com/gopherjs/gopherjs/js"
	"github.com/simukka/drumpal/audio"
)

// node wraps one Tone.js audio node.
type node struct {
	obj   *js.Object
	label string
	kind  audio.InstrumentKind // empty for effects
}

// call invokes a method and converts a thrown JS exception into an error.
func (n *node) call(method string, args ...interface{}) (res *js.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, jsError(method, n.label, r)
		}
	}()
	return n.obj.Call(method, args...), nil
}

func (n *node) Connect(dst audio.Node) error {
	target, ok := dst.(*node)
	if !ok {
		return audio.NewNodeError("connect", n.label, fmt.Errorf("foreign node %T", dst))
	}
	_, err := n.call("connect", target.obj)
	return err
}

func (n *node) Disconnect() error {
	_, err := n.call("disconnect")
	return err
}

// Dispose releases the node. Tone throws on a second dispose; the
// scheduler guards against that, so the error is simply reported.
func (n *node) Dispose() error {
	_, err := n.call("dispose")
	return err
}

func (n *node) Kind() audio.InstrumentKind { return n.kind }

func (n *node) Set(opts audio.Options) error {
	_, err := n.call("set", toJS(opts))
	return err
}

// TriggerAttackRelease maps a strike onto the positional arguments each
// Tone.js instrument expects.
func (n *node) TriggerAttackRelease(s audio.Strike) error {
	dur := durationArg(s.Duration)
	var err error
	switch s.Form {
	case audio.NoteAndDuration:
		_, err = n.call("triggerAttackRelease", s.Note, dur, s.At)
	case audio.DurationOnly:
		_, err = n.call("triggerAttackRelease", dur, s.At)
	case audio.NoteOnly:
		_, err = n.call("triggerAttackRelease", s.Note, s.At)
	default:
		err = audio.NewNodeError("trigger", n.label, audio.ErrNoTrigger)
	}
	return err
}

// durationArg passes notation through untouched for Tone to resolve.
func durationArg(d audio.Duration) interface{} {
	if d.IsNotation() {
		return d.Notation
	}
	return d.Seconds
}

// jsError turns a recovered GopherJS panic into a NodeError.
func jsError(op, label string, r interface{}) error {
	switch e := r.(type) {
	case *js.Error:
		return audio.NewNodeError(op, label, fmt.Errorf("%s", e.Error()))
	case error:
		return audio.NewNodeError(op, label, e)
	default:
		return audio.NewNodeError(op, label, fmt.Errorf("%v", r))
	}
}
