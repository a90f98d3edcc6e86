package kit

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var ErrInvalidShare = errors.New("invalid share data")

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// Shell is the customization of the toy's case.
type Shell struct {
	Color       string  `json:"c"`
	Transparent bool    `json:"t"`
	Sticker     *string `json:"s"`
}

// Shared is a decoded share link.
type Shared struct {
	Pads  []Pad
	Shell Shell
}

type sharedPad struct {
	ID     string `json:"id"`
	Prompt string `json:"p"`
}

type sharePayload struct {
	Pads  []sharedPad `json:"pads"`
	Shell Shell       `json:"shell"`
}

// Encode builds the share hash: base64 of the pad prompts and shell.
// Sounds are not shared; the receiver regenerates them from the prompts.
func Encode(pads []Pad, shell Shell) (string, error) {
	payload := sharePayload{Pads: make([]sharedPad, len(pads)), Shell: shell}
	for i, p := range pads {
		payload.Pads[i] = sharedPad{ID: p.ID, Prompt: p.Prompt}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode share: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode parses a share hash. Shared prompts replace those of the
// default pads with the same ID; those pads lose their built-in sound so
// it gets regenerated. Unknown pad IDs are ignored.
func Decode(hash string) (*Shared, error) {
	if !base64Pattern.MatchString(hash) {
		return nil, fmt.Errorf("%w: not base64", ErrInvalidShare)
	}
	b, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}

	var raw struct {
		Pads  []json.RawMessage `json:"pads"`
		Shell *struct {
			C *string `json:"c"`
			T *bool   `json:"t"`
			S any     `json:"s"`
		} `json:"shell"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	if raw.Pads == nil || raw.Shell == nil {
		return nil, fmt.Errorf("%w: missing pads or shell", ErrInvalidShare)
	}
	if raw.Shell.C == nil || raw.Shell.T == nil {
		return nil, fmt.Errorf("%w: bad shell", ErrInvalidShare)
	}

	prompts := map[string]string{}
	for _, msg := range raw.Pads {
		var item struct {
			ID string `json:"id"`
			P  any    `json:"p"`
		}
		if json.Unmarshal(msg, &item) != nil {
			continue
		}
		if p, ok := item.P.(string); ok && item.ID != "" {
			prompts[item.ID] = p
		}
	}

	pads := DefaultPads()
	for i := range pads {
		if p, ok := prompts[pads[i].ID]; ok {
			pads[i].Prompt = p
			pads[i].Sound = nil
			pads[i].SoundB = nil
		}
	}

	shell := Shell{Color: *raw.Shell.C, Transparent: *raw.Shell.T}
	if s, ok := raw.Shell.S.(string); ok {
		shell.Sticker = &s
	}
	return &Shared{Pads: pads, Shell: shell}, nil
}
