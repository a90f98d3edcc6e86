// Package server is the drum machine's HTTP backend: sound generation,
// saved kits, share links and the browser app.
package server

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/simukka/drumpal/generate"
	"github.com/simukka/drumpal/kit"
)

//go:embed index.html
var indexHTML []byte

// Config holds server configuration.
type Config struct {
	Addr      string // listen address, e.g. ":8080"
	KitDir    string // where kits and generated sounds are stored
	StaticDir string // compiled browser app (main.js) and other assets
	GeminiKey string // empty means the offline keyword generator
	Model     string // default model when a request names none
	DevMode   bool   // serve the keyword generator even with a key
}

// Server is the HTTP server.
type Server struct {
	config Config
	router *chi.Mux
	logger *slog.Logger
	gen    generate.Generator
	store  *kit.Store
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGenerator replaces the sound generator.
func WithGenerator(g generate.Generator) Option {
	return func(s *Server) { s.gen = g }
}

// New creates a server. The generator is Gemini behind the prompt cache
// when a key is configured, the keyword generator otherwise.
func New(cfg Config, opts ...Option) (*Server, error) {
	if cfg.Model == "" {
		cfg.Model = generate.DefaultModel
	}
	store, err := kit.NewStore(cfg.KitDir)
	if err != nil {
		return nil, fmt.Errorf("open kit store: %w", err)
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: slog.Default(),
		store:  store,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gen == nil {
		if cfg.GeminiKey != "" && !cfg.DevMode {
			s.gen = &generate.Cached{Gen: generate.NewGemini(cfg.GeminiKey), Store: store, Log: s.logger}
		} else {
			s.gen = generate.Keywords{}
		}
	}

	s.setupRoutes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors)

	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/check-api-key", s.handleCheckAPIKey)
		r.Post("/generate-sound", s.handleGenerateSound)
		r.Get("/pads", s.handleDefaultPads)
		r.Get("/presets", s.handlePresets)

		r.Get("/kits", s.handleListKits)
		r.Get("/kits/{name}", s.handleGetKit)
		r.Put("/kits/{name}", s.handlePutKit)
		r.Delete("/kits/{name}", s.handleDeleteKit)

		r.Post("/share", s.handleShare)
		r.Get("/share/*", s.handleDecodeShare)
	})

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// requestLogger logs each request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
			slog.String("id", middleware.GetReqID(r.Context())))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run serves until SIGINT/SIGTERM or ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // generation can be slow
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", s.config.Addr), slog.Bool("gemini", s.config.GeminiKey != ""))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.Any("error", err))
		return err
	}
	return <-errCh
}
