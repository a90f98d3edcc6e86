// Package generate turns text prompts into sound descriptors.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/kit"
)

// DefaultModel is the model used when a request names none.
const DefaultModel = "gemini-2.5-flash"

var (
	ErrEmptyPrompt = errors.New("prompt must be provided")

	// ErrInvalidDescriptor is returned when a generator produced something
	// that is not a sound descriptor.
	ErrInvalidDescriptor = audio.ErrInvalidDescriptor
)

// APIError is a non-2xx answer from a remote generator.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("generator returned %d: %s", e.Status, e.Body)
}

// Generator designs a sound from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (*audio.SoundDescriptor, error)
}

// Keywords is an offline generator that picks a sound from words in the
// prompt. It never fails on a non-empty prompt.
type Keywords struct{}

func (Keywords) Generate(ctx context.Context, prompt, model string) (*audio.SoundDescriptor, error) {
	text := strings.ToLower(strings.TrimSpace(prompt))
	if text == "" {
		return nil, ErrEmptyPrompt
	}
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("kick", "deep"):
		return &audio.SoundDescriptor{
			Instrument: audio.MembraneSynth,
			Options:    audio.Options{"pitchDecay": 0.01, "octaves": 2.0},
			Effects: []audio.EffectDescriptor{
				{Type: audio.PingPongDelay, Options: audio.Options{"delayTime": 0.2}},
			},
		}, nil
	case has("snare", "crisp"):
		return &audio.SoundDescriptor{
			Instrument: audio.NoiseSynth,
			Options:    audio.Options{"noise": audio.Options{"type": "white"}},
		}, nil
	case has("clap", "hand"):
		return &audio.SoundDescriptor{
			Instrument: audio.AMSynth,
			Options:    audio.Options{"harmonicity": 2.0},
		}, nil
	case has("metal", "tin"):
		return &audio.SoundDescriptor{
			Instrument: audio.MetalSynth,
			Options:    audio.Options{"frequency": 200.0},
		}, nil
	}
	return &audio.SoundDescriptor{
		Instrument: audio.Synth,
		Options:    audio.Options{"oscillator": audio.Options{"type": "square"}},
	}, nil
}

// Cached remembers generated sounds per prompt in a kit store, so a
// prompt is only sent to the generator once.
type Cached struct {
	Gen   Generator
	Store *kit.Store
	Log   *slog.Logger
}

func (c *Cached) Generate(ctx context.Context, prompt, model string) (*audio.SoundDescriptor, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	log := c.Log
	if log == nil {
		log = slog.Default()
	}

	if sound, ok, err := c.Store.LoadSound(prompt); err != nil {
		log.Warn("sound cache unreadable", "err", err)
	} else if ok {
		return sound, nil
	}

	sound, err := c.Gen.Generate(ctx, prompt, model)
	if err != nil {
		return nil, err
	}
	if err := c.Store.SaveSound(prompt, sound); err != nil {
		log.Warn("failed to cache sound", "err", err)
	}
	return sound, nil
}
