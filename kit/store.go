//go:build !js

package kit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/renameio/v2/maybe"

	"github.com/simukka/drumpal/audio"
)

const (
	kitsFile   = "kits.json"
	soundsFile = "sounds.json"
)

var (
	ErrNotFound    = errors.New("kit not found")
	ErrInvalidName = errors.New("invalid kit name")
)

// Store keeps saved kits and generated sounds as JSON files in a
// directory. It is safe for concurrent use within one process.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore opens (and creates) a store in dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create kit dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Save stores pads under name, replacing any kit of that name.
func (s *Store) Save(name string, pads []Pad) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kits, err := s.readKits()
	if err != nil {
		return err
	}
	kits[name] = ClonePads(pads)
	return s.write(kitsFile, kits)
}

// Load returns the kit saved under name.
func (s *Store) Load(name string) ([]Pad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kits, err := s.readKits()
	if err != nil {
		return nil, err
	}
	pads, ok := kits[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return pads, nil
}

// List returns the saved kit names in order.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kits, err := s.readKits()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(kits))
	for name := range kits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a saved kit. Deleting a missing kit is not an error.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kits, err := s.readKits()
	if err != nil {
		return err
	}
	if _, ok := kits[name]; !ok {
		return nil
	}
	delete(kits, name)
	return s.write(kitsFile, kits)
}

// SaveSound caches the sound generated for prompt.
func (s *Store) SaveSound(prompt string, sound *audio.SoundDescriptor) error {
	if sound == nil {
		return fmt.Errorf("save sound: %w", audio.ErrInvalidDescriptor)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sounds := map[string]*audio.SoundDescriptor{}
	if err := s.read(soundsFile, &sounds); err != nil {
		return err
	}
	sounds[prompt] = sound.Clone()
	return s.write(soundsFile, sounds)
}

// LoadSound returns the cached sound for prompt.
func (s *Store) LoadSound(prompt string) (*audio.SoundDescriptor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sounds := map[string]*audio.SoundDescriptor{}
	if err := s.read(soundsFile, &sounds); err != nil {
		return nil, false, err
	}
	sound, ok := sounds[prompt]
	return sound, ok && sound != nil, nil
}

func (s *Store) readKits() (map[string][]Pad, error) {
	kits := map[string][]Pad{}
	if err := s.read(kitsFile, &kits); err != nil {
		return nil, err
	}
	return kits, nil
}

func (s *Store) read(name string, v any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces the file atomically where the platform allows it.
func (s *Store) write(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := maybe.WriteFile(filepath.Join(s.dir, name), b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
