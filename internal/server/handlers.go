package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/speakbetter/speakbetter/internal/evaluate"
	"github.com/speakbetter/speakbetter/internal/feedback"
	"github.com/speakbetter/speakbetter/internal/observe"
	"github.com/speakbetter/speakbetter/internal/progress"
	"github.com/speakbetter/speakbetter/pkg/provider/stt"
)

// analyzeResponse is the body of POST /api/analyze. The embedded evaluation
// result carries transcription, grade, and scores.
type analyzeResponse struct {
	evaluate.Result

	Feedback string   `json:"feedback"`
	Insights []string `json:"insights,omitempty"`

	// HeardInstead names the word-list entry the transcription most
	// resembles when the attempt missed its target.
	HeardInstead string `json:"heardInstead,omitempty"`

	// NoSpeech is true when the provider detected no usable speech. No
	// attempt is recorded in that case.
	NoSpeech bool `json:"noSpeech,omitempty"`

	// Persisted is false when the attempt was evaluated but the store write
	// failed. The evaluation itself is never lost.
	Persisted bool `json:"persisted"`

	Progress *progress.WordProgress `json:"progress,omitempty"`
}

// handleAnalyze runs the full pipeline for one attempt: multipart upload →
// transcription → evaluation → feedback and insights → ledger write.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "malformed or oversized multipart upload")
		return
	}

	word := r.FormValue("word")
	if word == "" {
		writeError(w, http.StatusBadRequest, "missing form field: word")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form file: audio")
		return
	}
	defer file.Close()

	ctx, span := observe.StartSpan(ctx, "analyze")
	defer span.End()

	// Transcribe.
	sttStart := time.Now()
	tr, err := s.provider.Transcribe(ctx, stt.Request{
		Audio:    file,
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Prompt:   word,
		Language: s.language,
	})
	s.metrics.STTDuration.Record(ctx, time.Since(sttStart).Seconds(),
		metric.WithAttributes(observe.Attr("provider", s.providerName)))

	if err != nil {
		if errors.Is(err, stt.ErrNoSpeech) {
			writeJSON(w, http.StatusOK, analyzeResponse{
				Result:   evaluate.Result{Target: word, Grade: evaluate.GradeIncorrect},
				Feedback: feedback.NoSpeechMessage,
				NoSpeech: true,
			})
			return
		}
		s.metrics.RecordProviderError(ctx, s.providerName)
		observe.Logger(ctx).Error("transcription failed", "provider", s.providerName, "err", err)
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	// Evaluate.
	meta := evaluate.ConfidenceMeta{
		AvgLogprob:       tr.AvgLogprob,
		NoSpeechProb:     tr.NoSpeechProb,
		CompressionRatio: tr.CompressionRatio,
	}
	evalStart := time.Now()
	res := evaluate.Evaluate(tr.Text, word, meta)
	s.metrics.EvaluateDuration.Record(ctx, time.Since(evalStart).Seconds())
	s.metrics.RecordEvaluation(ctx, word, string(res.Grade))

	// Insights look at the history before this attempt.
	prior, err := s.ledger.WordStats(ctx, word)
	if err != nil {
		slog.Warn("word stats unavailable, insights use empty history", "word", word, "err", err)
		prior = progress.WordProgress{}
	}
	insights := progress.Insights(res, meta, prior.AttemptHistory)

	// Record.
	rec, recErr := s.ledger.RecordAttempt(ctx, word, res)
	if recErr != nil {
		s.metrics.RecordStoreFailure(ctx, s.storeBackend)
		observe.Logger(ctx).Warn("attempt evaluated but not persisted", "word", word, "err", recErr)
	}

	// Review-queue transitions.
	switch {
	case !prior.InReview && rec.InReview:
		s.metrics.RecordReviewEntry(ctx, word)
		s.metrics.ReviewQueueSize.Add(ctx, 1)
	case prior.InReview && !rec.InReview:
		s.metrics.ReviewQueueSize.Add(ctx, -1)
	}

	resp := analyzeResponse{
		Result:    res,
		Feedback:  s.picker.Message(res.Grade, word),
		Insights:  insights,
		Persisted: recErr == nil,
		Progress:  &rec,
	}
	if res.Grade != evaluate.GradeCorrect {
		if heard, ok := s.wordList().Closest(res.Transcription); ok && heard != word {
			resp.HeardInstead = heard
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleWords returns the configured practice word list.
func (s *Server) handleWords(w http.ResponseWriter, _ *http.Request) {
	words := s.wordList().Words()
	writeJSON(w, http.StatusOK, map[string]any{
		"words": words,
		"count": len(words),
	})
}

// handleNextWord returns the word following ?index, wrapping at the end.
// Without an index the first word is returned.
func (s *Server) handleNextWord(w http.ResponseWriter, r *http.Request) {
	index := -1
	if raw := r.URL.Query().Get("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid index")
			return
		}
		index = i
	}
	word, next := s.wordList().Next(index)
	writeJSON(w, http.StatusOK, map[string]any{
		"word":      word,
		"nextIndex": next,
	})
}

// handleRandomWord returns a uniformly random practice word.
func (s *Server) handleRandomWord(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"word": s.wordList().Random(nil),
	})
}

// wordStatsResponse is the body of GET /api/words/{word}.
type wordStatsResponse struct {
	Word      string                `json:"word"`
	Progress  progress.WordProgress `json:"progress"`
	Analytics progress.Analytics    `json:"analytics"`

	// Summary is a one-line reading of the word's full history, empty when
	// nothing stands out.
	Summary string `json:"summary,omitempty"`
}

// handleWordStats returns the per-word progress record with derived
// analytics. Unpracticed words yield a zero-valued record, not a 404, so
// clients need no special casing for first attempts.
func (s *Server) handleWordStats(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")

	wp, err := s.ledger.WordStats(r.Context(), word)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "progress store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, wordStatsResponse{
		Word:      word,
		Progress:  wp,
		Analytics: progress.ComputeAnalytics(wp.AttemptHistory),
		Summary:   progress.WordSummaryInsight(wp.AttemptHistory),
	})
}

// handleWordHistory returns the bounded attempt history for one word,
// oldest first.
func (s *Server) handleWordHistory(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")

	history, err := s.ledger.AttemptHistory(r.Context(), word)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "progress store unavailable")
		return
	}
	if history == nil {
		history = []progress.Attempt{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"word":    word,
		"history": history,
		"count":   len(history),
	})
}

// handleReview returns the words currently flagged for review, most
// mistakes first.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	words, err := s.ledger.ReviewQueue(r.Context(), s.wordList().Words())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "progress store unavailable")
		return
	}
	if words == nil {
		words = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"words": words,
		"count": len(words),
	})
}

// handleFocus returns ranked practice-focus suggestions. ?limit overrides
// the configured default.
func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	limit := int(s.focusLimit.Load())
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	suggestions, err := s.ledger.FocusSuggestions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "progress store unavailable")
		return
	}
	if suggestions == nil {
		suggestions = []progress.Suggestion{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}

// handleOverview returns the cross-word session overview.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	all, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "progress store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, progress.ComputeOverview(all, s.wordList().Words()))
}

// handleReset clears all stored progress.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The review-queue gauge drops to zero with the data.
	if words, err := s.ledger.ReviewQueue(ctx, s.wordList().Words()); err == nil && len(words) > 0 {
		s.metrics.ReviewQueueSize.Add(ctx, -int64(len(words)))
	}

	if err := s.ledger.Clear(ctx); err != nil {
		observe.Logger(ctx).Error("progress reset failed", "err", err)
		writeError(w, http.StatusInternalServerError, "progress reset failed")
		return
	}

	slog.Info("progress reset")
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}
