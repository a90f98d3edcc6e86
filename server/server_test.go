package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/generate"
	"github.com/simukka/drumpal/kit"
	"github.com/simukka/drumpal/toy"
)

type failingGen struct{}

func (failingGen) Generate(ctx context.Context, prompt, model string) (*audio.SoundDescriptor, error) {
	if prompt == "" {
		return nil, generate.ErrEmptyPrompt
	}
	return nil, &generate.APIError{Status: 500, Body: "boom"}
}

func newTestServer(t *testing.T, cfg Config, opts ...Option) *Server {
	t.Helper()
	cfg.KitDir = t.TempDir()
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	s, err := New(cfg, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, Config{})
	w := do(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("Expected ok, got %d %s", w.Code, w.Body)
	}
}

func TestServer_Index(t *testing.T) {
	s := newTestServer(t, Config{})
	w := do(s, http.MethodGet, "/", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Drum-Pal") {
		t.Errorf("Expected the index page, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected html, got %s", ct)
	}
	for _, id := range []string{`id="mix"`, `id="edit"`} {
		if !strings.Contains(w.Body.String(), id) {
			t.Errorf("Expected the morph control %s on the page", id)
		}
	}
}

func TestServer_CheckAPIKey(t *testing.T) {
	for _, key := range []string{"", "k"} {
		s := newTestServer(t, Config{GeminiKey: key, DevMode: true})
		w := do(s, http.MethodGet, "/api/check-api-key", "")
		var got struct{ HasApiKey bool }
		json.Unmarshal(w.Body.Bytes(), &got)
		if got.HasApiKey != (key != "") {
			t.Errorf("key %q: expected hasApiKey %v, got %s", key, key != "", w.Body)
		}
	}
}

func TestServer_GenerateSound(t *testing.T) {
	s := newTestServer(t, Config{})
	w := do(s, http.MethodPost, "/api/generate-sound", `{"prompt":"deep kick"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body)
	}
	sound, err := audio.ParseDescriptor(w.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if sound.Instrument != audio.MembraneSynth {
		t.Errorf("Expected MembraneSynth, got %s", sound.Instrument)
	}
}

func TestServer_GenerateSound_Errors(t *testing.T) {
	s := newTestServer(t, Config{}, WithGenerator(failingGen{}))
	tests := []struct {
		body string
		code int
	}{
		{`{"prompt":""}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
		{`{"prompt":"kick"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		if w := do(s, http.MethodPost, "/api/generate-sound", tt.body); w.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.body, tt.code, w.Code)
		}
	}
}

func TestServer_Kits(t *testing.T) {
	s := newTestServer(t, Config{})

	w := do(s, http.MethodGet, "/api/kits", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected an empty list, got %s", w.Body)
	}

	pads, _ := json.Marshal(kit.DefaultPads()[:2])
	if w := do(s, http.MethodPut, "/api/kits/mine", string(pads)); w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d %s", w.Code, w.Body)
	}

	w = do(s, http.MethodGet, "/api/kits/mine", "")
	var got []kit.Pad
	json.Unmarshal(w.Body.Bytes(), &got)
	if len(got) != 2 || got[0].ID != "kick" {
		t.Errorf("Unexpected kit %s", w.Body)
	}

	w = do(s, http.MethodGet, "/api/kits", "")
	if !strings.Contains(w.Body.String(), "mine") {
		t.Errorf("Expected mine in the list, got %s", w.Body)
	}

	if w := do(s, http.MethodDelete, "/api/kits/mine", ""); w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if w := do(s, http.MethodGet, "/api/kits/mine", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

type nopPlayer struct{}

func (nopPlayer) Trigger(ctx context.Context, req audio.Request) *audio.Handle { return nil }

// TestServer_Kits_Morph saves a kit edited on a toy and checks sound B and
// the morph come back.
func TestServer_Kits_Morph(t *testing.T) {
	s := newTestServer(t, Config{})
	dp := toy.New(nopPlayer{}, toy.WithLogger(slog.New(slog.DiscardHandler)))
	dp.SetEditing(toy.SlotB)
	if _, ok := dp.NextPreset("kick"); !ok {
		t.Fatal("Expected a preset for sound B")
	}
	dp.SetMorph("kick", 0.75)

	pads, _ := json.Marshal(dp.Pads())
	if w := do(s, http.MethodPut, "/api/kits/morphing", string(pads)); w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d %s", w.Code, w.Body)
	}
	w := do(s, http.MethodGet, "/api/kits/morphing", "")
	var got []kit.Pad
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	kick, ok := kit.Find(got, "kick")
	if !ok || kick.Sound == nil || kick.SoundB == nil || kick.Morph != 0.75 {
		t.Errorf("Expected kick with both sounds at morph 0.75, got %+v", kick)
	}
}

func TestServer_Share(t *testing.T) {
	s := newTestServer(t, Config{})
	w := do(s, http.MethodPost, "/api/share", `{"pads":[{"id":"fx1","soundPrompt":"laser zap"}],"shell":{"c":"RED","t":true,"s":null}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body)
	}
	var resp struct{ Hash string }
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Hash == "" {
		t.Fatal("Expected a hash")
	}

	w = do(s, http.MethodGet, "/api/share/"+url.PathEscape(resp.Hash), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body)
	}
	var shared struct {
		Pads  []kit.Pad
		Shell kit.Shell
	}
	json.Unmarshal(w.Body.Bytes(), &shared)
	fx, _ := kit.Find(shared.Pads, "fx1")
	if fx.Prompt != "laser zap" || shared.Shell.Color != "RED" || !shared.Shell.Transparent {
		t.Errorf("Unexpected decoded share %s", w.Body)
	}

	if w := do(s, http.MethodGet, "/api/share/!!!", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad hash, got %d", w.Code)
	}
}

func TestServer_Presets(t *testing.T) {
	s := newTestServer(t, Config{})
	w := do(s, http.MethodGet, "/api/presets", "")
	var infos []kit.PresetInfo
	if err := json.Unmarshal(w.Body.Bytes(), &infos); err != nil || len(infos) != len(kit.PresetLibrary) {
		t.Errorf("Unexpected presets %s (%v)", w.Body, err)
	}
	w = do(s, http.MethodGet, "/api/pads", "")
	var pads []kit.Pad
	json.Unmarshal(w.Body.Bytes(), &pads)
	if len(pads) != 8 {
		t.Errorf("Expected 8 pads, got %d", len(pads))
	}
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, Config{})
	w := do(s, http.MethodOptions, "/api/generate-sound", "")
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected a CORS preflight answer, got %d", w.Code)
	}
}

func TestServer_GeminiSelected(t *testing.T) {
	s := newTestServer(t, Config{GeminiKey: "k"})
	if _, ok := s.gen.(*generate.Cached); !ok {
		t.Errorf("Expected the cached Gemini generator, got %T", s.gen)
	}
}
