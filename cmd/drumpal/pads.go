package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/audio/native"
	"github.com/simukka/drumpal/kit"
	"github.com/simukka/drumpal/toy"
	"github.com/simukka/drumpal/tui"
)

var (
	kitDir   string
	kitName  string
	listMIDI bool
	midiPort string
	loved    bool
)

var padsCmd = &cobra.Command{
	Use:   "pads",
	Short: "Play the pads from the terminal",
	Long: `Open the terminal drum toy. Pads are on q w e / a s d / c / space.

Examples:
  drumpal pads
  drumpal pads --kit mine --midi "IAC Driver Bus 1"
  drumpal pads --list-midi`,
	RunE: runPads,
}

var midiCmd = &cobra.Command{
	Use:   "midi",
	Short: "Play the pads from a MIDI controller without a UI",
	Long: `Listen for note-on messages and play the pad mapped to each General
MIDI drum note until interrupted.

Example:
  drumpal midi --port "MPD218"`,
	RunE: runMIDI,
}

func init() {
	for _, c := range []*cobra.Command{padsCmd, midiCmd} {
		c.Flags().StringVar(&kitDir, "kits", "kits", "Directory of saved kits")
		c.Flags().StringVar(&kitName, "kit", "", "Saved kit to load (default: built-in kit)")
		c.Flags().BoolVar(&toySpeaker, "toy", false, "Start with the toy speaker on")
		c.Flags().BoolVar(&loved, "loved", false, "Start in well-loved mode")
	}
	padsCmd.Flags().BoolVar(&listMIDI, "list-midi", false, "List MIDI input ports and exit")
	padsCmd.Flags().StringVar(&midiPort, "midi", "", "Also play pads from this MIDI input port")
	midiCmd.Flags().StringVarP(&midiPort, "port", "p", "", "MIDI input port (required)")
	midiCmd.MarkFlagRequired("port")
}

// liveToy is a toy playing through the speakers.
type liveToy struct {
	*toy.Toy
	engine  *audio.Engine
	speaker *native.Speaker
}

func newLiveToy(log *slog.Logger) (*liveToy, error) {
	pads := kit.DefaultPads()
	if kitName != "" {
		store, err := kit.NewStore(kitDir)
		if err != nil {
			return nil, err
		}
		if pads, err = store.Load(kitName); err != nil {
			return nil, err
		}
	}

	host := native.New(native.WithLogger(log))
	engine := audio.NewEngine(host, audio.WithLogger(log))
	speaker, err := native.NewSpeaker(host)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	speaker.Play()

	t := toy.New(engine, toy.WithLogger(log), toy.WithPads(pads))
	t.SetToySpeaker(toySpeaker)
	t.SetWellLoved(loved)
	return &liveToy{Toy: t, engine: engine, speaker: speaker}, nil
}

func (l *liveToy) Close() {
	l.Toy.Close()
	l.engine.Shutdown()
	l.speaker.Close()
}

func runPads(cmd *cobra.Command, args []string) error {
	if listMIDI {
		for _, name := range toy.MIDIInPorts() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	log, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	live, err := newLiveToy(log)
	if err != nil {
		return err
	}
	defer live.Close()

	if midiPort != "" {
		stop, err := live.ListenMIDI(midiPort)
		if err != nil {
			return err
		}
		defer stop()
	}
	return tui.Run(live.Toy)
}

func runMIDI(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	live, err := newLiveToy(log)
	if err != nil {
		return err
	}
	defer live.Close()

	stop, err := live.ListenMIDI(midiPort)
	if err != nil {
		return err
	}
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	return nil
}
