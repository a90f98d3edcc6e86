package audio

import "fmt"

// SpeakerChain is a built degradation chain. Input receives the sound,
// Output feeds the destination, Nodes lists everything to dispose.
type SpeakerChain struct {
	Input  Node
	Output Node
	Nodes  []Node
}

// Route wires inst through effects, then through speaker when non-nil,
// and finally into dst. The instrument is detached from any previous
// route first so a reused instrument only feeds its newest chain.
func Route(inst Instrument, effects []Node, speaker *SpeakerChain, dst Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewNodeError("connect", string(inst.Kind()), panicError(r))
		}
	}()

	if err := inst.Disconnect(); err != nil {
		return NewNodeError("disconnect", string(inst.Kind()), err)
	}

	sink := dst
	if speaker != nil {
		sink = speaker.Input
	}

	var prev Node = inst
	for i, fx := range effects {
		if err := prev.Connect(fx); err != nil {
			return NewNodeError("connect", fmt.Sprintf("effect %d", i), err)
		}
		prev = fx
	}
	if err := prev.Connect(sink); err != nil {
		return NewNodeError("connect", "sink", err)
	}

	if speaker != nil {
		if err := speaker.Output.Connect(dst); err != nil {
			return NewNodeError("connect", "speaker", err)
		}
	}
	return nil
}
