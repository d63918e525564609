// Package server exposes the SpeakBetter HTTP API.
//
// The API surface:
//
//   - POST   /api/analyze              — upload an attempt, get the evaluation
//   - GET    /api/words                — the configured practice word list
//   - GET    /api/words/next          — sequential word selection
//   - GET    /api/words/random        — random word selection
//   - GET    /api/words/{word}        — per-word stats and analytics
//   - GET    /api/words/{word}/history — per-word attempt history
//   - GET    /api/review              — words flagged for review
//   - GET    /api/focus               — practice-focus suggestions
//   - GET    /api/overview            — cross-word session overview
//   - DELETE /api/progress            — full progress reset
//   - GET    /healthz, /readyz        — liveness and readiness probes
//   - GET    /metrics                 — Prometheus scrape endpoint
//
// All handlers respond with JSON. The word list and focus limit are
// hot-swappable via [Server.SetWordList] and [Server.SetFocusLimit] so a
// config reload never requires a restart.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speakbetter/speakbetter/internal/feedback"
	"github.com/speakbetter/speakbetter/internal/health"
	"github.com/speakbetter/speakbetter/internal/observe"
	"github.com/speakbetter/speakbetter/internal/progress"
	"github.com/speakbetter/speakbetter/internal/wordlist"
	"github.com/speakbetter/speakbetter/pkg/provider/stt"
)

// defaultMaxUploadBytes bounds the multipart audio upload size.
const defaultMaxUploadBytes = 25 << 20 // 25 MiB

// Params collects the collaborators a [Server] needs. Provider, Ledger,
// Words, Picker, Metrics, and Health are required; the rest have defaults.
type Params struct {
	// Provider transcribes uploaded audio.
	Provider stt.Provider

	// ProviderName labels provider metrics ("openai", "whisper", "mock").
	ProviderName string

	// Language is forwarded to the provider with each request.
	Language string

	// Ledger owns all progress reads and writes.
	Ledger *progress.Ledger

	// Words is the initial practice word list.
	Words *wordlist.List

	// Picker selects feedback messages.
	Picker *feedback.Picker

	// Metrics receives pipeline instrumentation.
	Metrics *observe.Metrics

	// Health serves the liveness and readiness probes.
	Health *health.Handler

	// StoreBackend labels store-failure metrics ("memory", "file", "postgres").
	StoreBackend string

	// FocusLimit is the default suggestion count for /api/focus.
	// Zero means [progress.DefaultFocusLimit].
	FocusLimit int

	// MaxUploadBytes bounds the analyze upload size. Zero means 25 MiB.
	MaxUploadBytes int64
}

// Server is the HTTP API for the pronunciation practice engine. It is safe
// for concurrent use.
type Server struct {
	provider     stt.Provider
	providerName string
	language     string
	ledger       *progress.Ledger
	picker       *feedback.Picker
	metrics      *observe.Metrics
	health       *health.Handler
	storeBackend string

	maxUploadBytes int64

	// Hot-reloadable via the config watcher.
	words      atomic.Pointer[wordlist.List]
	focusLimit atomic.Int64
}

// New creates a Server from params.
func New(p Params) *Server {
	s := &Server{
		provider:       p.Provider,
		providerName:   p.ProviderName,
		language:       p.Language,
		ledger:         p.Ledger,
		picker:         p.Picker,
		metrics:        p.Metrics,
		health:         p.Health,
		storeBackend:   p.StoreBackend,
		maxUploadBytes: p.MaxUploadBytes,
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = defaultMaxUploadBytes
	}
	s.words.Store(p.Words)
	limit := p.FocusLimit
	if limit <= 0 {
		limit = progress.DefaultFocusLimit
	}
	s.focusLimit.Store(int64(limit))
	return s
}

// SetWordList swaps the practice word list. Called by the config watcher on
// hot reload; in-flight requests keep the list they started with.
func (s *Server) SetWordList(l *wordlist.List) {
	s.words.Store(l)
	slog.Info("word list updated", "count", l.Len())
}

// SetFocusLimit swaps the default focus suggestion count.
func (s *Server) SetFocusLimit(limit int) {
	if limit <= 0 {
		limit = progress.DefaultFocusLimit
	}
	s.focusLimit.Store(int64(limit))
}

// wordList returns the current word list.
func (s *Server) wordList() *wordlist.List {
	return s.words.Load()
}

// Handler builds the full route table wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/words", s.handleWords)
	mux.HandleFunc("GET /api/words/next", s.handleNextWord)
	mux.HandleFunc("GET /api/words/random", s.handleRandomWord)
	mux.HandleFunc("GET /api/words/{word}", s.handleWordStats)
	mux.HandleFunc("GET /api/words/{word}/history", s.handleWordHistory)
	mux.HandleFunc("GET /api/review", s.handleReview)
	mux.HandleFunc("GET /api/focus", s.handleFocus)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("DELETE /api/progress", s.handleReset)

	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
