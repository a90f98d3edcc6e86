package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/audio/native"
	"github.com/simukka/drumpal/kit"
	"github.com/simukka/drumpal/toy"
)

var (
	morphPath  string
	mix        float64
	toySpeaker bool
	battery    float64
	sampleRate int
	seed       uint32
	outputPath string
	seqPath    string
	bpm        float64
	length     time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play <descriptor.json|preset>",
	Short: "Play one sound through the speakers",
	Long: `Play a sound descriptor, or a built-in preset by name, through the
default audio device.

Examples:
  drumpal play kick
  drumpal play laser.json --morph zap.json --mix 0.3
  drumpal play snare --toy --battery 5`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

var renderCmd = &cobra.Command{
	Use:   "render [descriptor.json|preset]",
	Short: "Render a sound or a recorded sequence to WAV",
	Long: `Render offline to a 16-bit mono WAV file. With --sequence, a
recorded pad sequence is played on the default kit instead of a single
sound.

Examples:
  drumpal render kick -o kick.wav
  drumpal render --sequence beat.json --bpm 90 -o beat.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <descriptor.json|preset>",
	Short: "Print the audio graph a sound builds",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	for _, c := range []*cobra.Command{playCmd, renderCmd, inspectCmd} {
		c.Flags().StringVar(&morphPath, "morph", "", "Second descriptor to morph towards")
		c.Flags().Float64Var(&mix, "mix", 0, "Morph amount (0-1)")
		c.Flags().BoolVar(&toySpeaker, "toy", false, "Route through the toy speaker")
		c.Flags().Float64Var(&battery, "battery", audio.FullBattery, "Battery level (0-100)")
	}
	for _, c := range []*cobra.Command{playCmd, renderCmd} {
		c.Flags().IntVar(&sampleRate, "rate", native.DefaultSampleRate, "Sample rate")
		c.Flags().Uint32Var(&seed, "seed", 1, "Noise seed")
	}
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "out.wav", "Output WAV file")
	renderCmd.Flags().StringVar(&seqPath, "sequence", "", "Recorded sequence JSON to render")
	renderCmd.Flags().Float64Var(&bpm, "bpm", 120, "Playback tempo for --sequence")
	renderCmd.Flags().DurationVar(&length, "length", 0, "Render length (default: until the sound is released)")
}

// request builds the trigger request from the argument and flags.
func request(arg string) (audio.Request, error) {
	sound, err := loadSound(arg)
	if err != nil {
		return audio.Request{}, err
	}
	req := audio.NewRequest(sound)
	if morphPath != "" {
		if req.Morph, err = loadSound(morphPath); err != nil {
			return audio.Request{}, fmt.Errorf("morph: %w", err)
		}
		req.Mix = mix
	}
	req.ToySpeaker = toySpeaker
	req.Battery = battery
	return req, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	req, err := request(args[0])
	if err != nil {
		return err
	}

	host := native.New(native.WithSampleRate(sampleRate), native.WithSeed(seed), native.WithLogger(log))
	engine := audio.NewEngine(host, audio.WithLogger(log))
	defer engine.Shutdown()

	speaker, err := native.NewSpeaker(host)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	defer speaker.Close()
	speaker.Play()

	h := engine.Trigger(cmd.Context(), req)
	if h == nil {
		return fmt.Errorf("nothing was played")
	}
	select {
	case <-h.Done():
	case <-cmd.Context().Done():
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	host := native.New(native.WithSampleRate(sampleRate), native.WithSeed(seed), native.WithLogger(log))
	tl := native.NewTimeline()
	engine := audio.NewEngine(host, audio.WithClock(tl), audio.WithLogger(log))
	defer engine.Shutdown()

	var hits []hit
	switch {
	case seqPath != "":
		hits, err = sequenceHits(seqPath)
	case len(args) == 1:
		var req audio.Request
		req, err = request(args[0])
		hits = []hit{{req: req}}
	default:
		err = fmt.Errorf("need a sound or --sequence")
	}
	if err != nil {
		return err
	}

	d := length
	if d == 0 {
		d = hits[len(hits)-1].at + engine.Config().ReleaseTail + time.Second
	}

	ctx := cmd.Context()
	if !engine.Initialize(ctx) {
		return fmt.Errorf("audio context did not start")
	}
	next := 0
	samples := host.Record(d, func(now time.Duration) {
		for next < len(hits) && hits[next].at <= now {
			engine.Trigger(ctx, hits[next].req)
			next++
		}
		tl.AdvanceTo(now)
	})

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := native.WriteWAV(f, samples, host.SampleRate()); err != nil {
		f.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	log.Info("rendered", "file", outputPath, "length", d, "hits", len(hits), "peak", native.Peak(samples))
	return f.Close()
}

type hit struct {
	at  time.Duration
	req audio.Request
}

// sequenceHits loads a recorded sequence and maps it onto the default
// kit at the requested tempo.
func sequenceHits(path string) ([]hit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	seq, err := toy.ParseSequence(data)
	if err != nil {
		return nil, err
	}
	if len(seq.Notes) == 0 {
		return nil, fmt.Errorf("%s: empty sequence", path)
	}

	pads := kit.DefaultPads()
	speed := toy.DefaultConfig().ReferenceBPM / bpm
	level := battery
	var hits []hit
	for _, n := range seq.Notes {
		pad, ok := kit.Find(pads, n.PadID)
		if !ok {
			continue
		}
		at := time.Duration(n.Timestamp * speed * float64(time.Millisecond))
		hits = append(hits, hit{at: at, req: pad.Request(toySpeaker, level)})
		level = max(0, level-toy.DefaultConfig().BatteryDrain)
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%s: no notes match the kit", path)
	}
	return hits, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	req, err := request(args[0])
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	host := audio.NewHeadlessHost()
	engine := audio.NewEngine(host, audio.WithLogger(log))
	if engine.Trigger(context.Background(), req) == nil {
		return fmt.Errorf("nothing was played")
	}
	fmt.Fprintln(cmd.OutOrStdout(), host.Graph())
	for _, ev := range host.Events() {
		fmt.Fprintln(cmd.OutOrStdout(), ev)
	}
	engine.Shutdown()
	return nil
}
