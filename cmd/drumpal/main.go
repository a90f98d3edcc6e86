package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/kit"
)

var (
	version = "0.1.0"

	verbose bool
	logFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "drumpal",
	Short: "A toy drum machine with prompt-designed sounds",
	Long: `Drum-Pal plays drum pads built from JSON sound descriptors.
Sounds can come from the built-in kit, from files, or be designed from a
text prompt by the server.

Commands: serve, play, render, inspect, pads, midi`,
	Version:       version,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(padsCmd)
	rootCmd.AddCommand(midiCmd)
}

// newLogger builds the command's logger. Interactive commands pass
// quiet so logs never draw over the terminal UI unless --log is set.
func newLogger(quiet bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case quiet:
		return slog.New(slog.DiscardHandler), closeFn, nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

// loadSound reads a descriptor file, or names a built-in preset.
func loadSound(arg string) (*audio.SoundDescriptor, error) {
	data, err := os.ReadFile(arg)
	if err == nil {
		return audio.ParseDescriptor(data)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	if p := kit.PresetByName(arg); p != nil {
		return p.Sound.Clone(), nil
	}
	return nil, fmt.Errorf("%s: no such file or preset", arg)
}
