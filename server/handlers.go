package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/simukka/drumpal/generate"
	"github.com/simukka/drumpal/kit"
)

const maxBodySize = 1 << 20

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type shareRequest struct {
	Pads  []kit.Pad `json:"pads"`
	Shell kit.Shell `json:"shell"`
}

type shareResponse struct {
	Hash  string     `json:"hash,omitempty"`
	Pads  []kit.Pad  `json:"pads,omitempty"`
	Shell *kit.Shell `json:"shell,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// handleIndex serves the browser app page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleCheckAPIKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"hasApiKey": s.config.GeminiKey != ""})
}

// handleGenerateSound designs a sound descriptor for a prompt
func (s *Server) handleGenerateSound(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	model := req.Model
	if model == "" {
		model = s.config.Model
	}

	sound, err := s.gen.Generate(r.Context(), req.Prompt, model)
	switch {
	case errors.Is(err, generate.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, "prompt must be provided")
		return
	case err != nil:
		s.logger.Error("sound generation failed", "err", err, "model", model)
		writeError(w, http.StatusBadGateway, "Error generating sound")
		return
	}
	writeJSON(w, http.StatusOK, sound)
}

func (s *Server) handleDefaultPads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, kit.DefaultPads())
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, kit.AllPresetInfo())
}

func (s *Server) handleListKits(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List()
	if err != nil {
		s.logger.Error("list kits", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list kits")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleGetKit(w http.ResponseWriter, r *http.Request) {
	pads, err := s.store.Load(chi.URLParam(r, "name"))
	if err != nil {
		s.kitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pads)
}

func (s *Server) handlePutKit(w http.ResponseWriter, r *http.Request) {
	var pads []kit.Pad
	if !decodeBody(w, r, &pads) {
		return
	}
	if err := s.store.Save(chi.URLParam(r, "name"), pads); err != nil {
		s.kitError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteKit(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "name")); err != nil {
		s.kitError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) kitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kit.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, kit.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("kit store", "err", err)
		writeError(w, http.StatusInternalServerError, "kit store failure")
	}
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hash, err := kit.Encode(req.Pads, req.Shell)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Hash: hash})
}

func (s *Server) handleDecodeShare(w http.ResponseWriter, r *http.Request) {
	hash, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid share hash")
		return
	}
	shared, err := kit.Decode(hash)
	if err != nil {
		s.logger.Warn("failed to parse sound kit from share link", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Pads: shared.Pads, Shell: &shared.Shell})
}
