package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/simukka/drumpal/audio"
)

// APIVersion is the Generative Language API version requested.
const APIVersion = "v1beta"

const promptPrefix = `
You are an expert sound designer creating configurations for Tone.js for a drum machine.
`

const promptExamples = `
Here are some examples:

User prompt: A deep, punchy kick drum sound. 808 style.
{
  "instrument": "MembraneSynth",
  "options": {
    "pitchDecay": 0.05,
    "octaves": 10,
    "oscillator": { "type": "sine" },
    "envelope": { "attack": 0.001, "decay": 0.4, "sustain": 0.01, "release": 1.4, "attackCurve": "exponential" }
  }
}

User prompt: A crisp, snappy snare drum with a short burst of white noise.
{
  "instrument": "NoiseSynth",
  "options": {
    "noise": { "type": "white" },
    "envelope": { "attack": 0.001, "decay": 0.1, "sustain": 0 }
  }
}
`

// soundSchema constrains the model's JSON output.
var soundSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"instrument": {
			Type: genai.TypeString,
			Enum: []string{"MembraneSynth", "NoiseSynth", "MetalSynth", "FMSynth", "AMSynth", "Synth", "PluckSynth"},
		},
		"options": {Type: genai.TypeObject},
		"effects": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"type":    {Type: genai.TypeString},
					"options": {Type: genai.TypeObject},
				},
			},
		},
		"duration": {Type: genai.TypeString},
		"note":     {Type: genai.TypeString},
	},
	Required: []string{"instrument", "options"},
}

func f32(v float32) *float32 { return &v }

// Gemini asks a Gemini model to design the sound. Endpoint overrides the
// API base URL and is empty for the public service.
type Gemini struct {
	APIKey   string
	Endpoint string
	Client   *http.Client

	once   sync.Once
	client *genai.Client
	err    error
}

// NewGemini returns a client for the public endpoint.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		APIKey: apiKey,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

// FullPrompt wraps a user prompt with the designer instructions and
// examples.
func FullPrompt(prompt string) string {
	return promptPrefix + "\n" + promptExamples + "\nGenerate a JSON object for the following sound description:\n" + prompt
}

func (g *Gemini) connect(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     g.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: g.Client,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    g.Endpoint,
				APIVersion: APIVersion,
			},
		})
	})
	return g.client, g.err
}

func (g *Gemini) Generate(ctx context.Context, prompt, model string) (*audio.SoundDescriptor, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := g.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(FullPrompt(prompt)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   soundSchema,
		Temperature:      f32(0.7),
		TopP:             f32(0.95),
		TopK:             f32(50),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &APIError{Status: apiErr.Code, Body: apiErr.Message}
		}
		return nil, fmt.Errorf("generate sound: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidDescriptor)
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			text.WriteString(p.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidDescriptor)
	}
	return audio.ParseDescriptor([]byte(text.String()))
}
