package audio

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes the runtime absorbs.
var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrUnknownEffect     = errors.New("unknown effect")
	ErrNotRunning        = errors.New("audio context not running")
	ErrNoTrigger         = errors.New("instrument cannot be triggered")
	ErrDisposed          = errors.New("node already disposed")
	ErrInvalidDescriptor = errors.New("invalid sound descriptor")
)

// NodeError reports a failure inside the host library while building,
// wiring, triggering or disposing a node.
type NodeError struct {
	Op   string // "create", "connect", "trigger", "dispose", "start"
	Kind string // instrument or effect kind, or node label
	Err  error
}

func (e *NodeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// NewNodeError creates a NodeError.
func NewNodeError(op, kind string, err error) *NodeError {
	return &NodeError{Op: op, Kind: kind, Err: err}
}

// panicError turns a recovered host panic (a JavaScript exception under
// GopherJS) into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
