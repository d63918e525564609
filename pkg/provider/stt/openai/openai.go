// Package openai provides an STT provider backed by the OpenAI audio API.
//
// Transcription requests ask for verbose JSON so the per-segment confidence
// signals (avg_logprob, no_speech_prob, compression_ratio) survive into the
// [stt.Transcript]; the clarity estimate downstream depends on them. The
// provider first tries the primary model and falls back to whisper-1 when the
// primary rejects the request, since not every account has access to the
// newest transcription models.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/speakbetter/speakbetter/pkg/provider/stt"
)

// DefaultModel is tried first for every transcription.
const DefaultModel = "gpt-4o-transcribe"

// FallbackModel is used when the primary model rejects the request.
const FallbackModel = string(oai.AudioModelWhisper1)

var _ stt.Provider = (*Provider)(nil)

// Provider implements [stt.Provider] using the OpenAI audio API.
type Provider struct {
	client   oai.Client
	model    string
	fallback string
}

type config struct {
	baseURL  string
	timeout  time.Duration
	fallback string
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL. Useful for
// API-compatible proxies.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request timeout. Defaults to 60s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithFallbackModel overrides the model tried after the primary fails.
// An empty string disables the fallback entirely.
func WithFallbackModel(model string) Option {
	return func(c *config) {
		c.fallback = model
	}
}

// New constructs an OpenAI STT provider. If model is empty, [DefaultModel]
// is used.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai stt: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := config{
		timeout:  60 * time.Second,
		fallback: FallbackModel,
	}
	for _, o := range opts {
		o(&cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(cfg.timeout),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Provider{
		client:   oai.NewClient(reqOpts...),
		model:    model,
		fallback: cfg.fallback,
	}, nil
}

// verboseTranscription mirrors the verbose_json response shape. The SDK's
// typed Transcription drops the segment detail, so the raw body is decoded
// into this instead.
type verboseTranscription struct {
	Text     string   `json:"text"`
	Language string   `json:"language"`
	Duration *float64 `json:"duration"`
	Segments []struct {
		Text             string  `json:"text"`
		Start            float64 `json:"start"`
		End              float64 `json:"end"`
		AvgLogprob       float64 `json:"avg_logprob"`
		NoSpeechProb     float64 `json:"no_speech_prob"`
		CompressionRatio float64 `json:"compression_ratio"`
	} `json:"segments"`
}

// Transcribe implements [stt.Provider]. The audio is buffered once so the
// fallback attempt can resend it.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (*stt.Transcript, error) {
	audio, err := io.ReadAll(req.Audio)
	if err != nil {
		return nil, fmt.Errorf("openai stt: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai stt: empty audio")
	}

	tr, err := p.transcribeWith(ctx, p.model, audio, req)
	if err != nil && p.fallback != "" && p.fallback != p.model {
		slog.Warn("primary transcription model failed, falling back",
			"model", p.model, "fallback", p.fallback, "err", err)
		tr, err = p.transcribeWith(ctx, p.fallback, audio, req)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(tr.Text) == "" {
		return nil, stt.ErrNoSpeech
	}
	return tr, nil
}

func (p *Provider) transcribeWith(ctx context.Context, model string, audio []byte, req stt.Request) (*stt.Transcript, error) {
	filename := req.Filename
	if filename == "" {
		filename = "recording.webm"
	}

	params := oai.AudioTranscriptionNewParams{
		Model:          oai.AudioModel(model),
		File:           oai.File(bytes.NewReader(audio), filename, req.MIMEType),
		ResponseFormat: oai.AudioResponseFormatVerboseJSON,
	}
	if req.Prompt != "" {
		params.Prompt = oai.String(req.Prompt)
	}
	if req.Language != "" {
		params.Language = oai.String(req.Language)
	}

	// The SDK's Transcription type does not carry segments, so capture the
	// raw verbose_json body alongside the typed call.
	var raw verboseTranscription
	_, err := p.client.Audio.Transcriptions.New(ctx, params, option.WithResponseBodyInto(&raw))
	if err != nil {
		return nil, fmt.Errorf("openai stt: transcribe with %s: %w", model, err)
	}

	tr := &stt.Transcript{
		Text:     raw.Text,
		Language: raw.Language,
		Duration: raw.Duration,
	}
	for _, s := range raw.Segments {
		seg := s
		tr.Segments = append(tr.Segments, stt.Segment{
			Text:             seg.Text,
			Start:            seg.Start,
			End:              seg.End,
			AvgLogprob:       &seg.AvgLogprob,
			NoSpeechProb:     &seg.NoSpeechProb,
			CompressionRatio: &seg.CompressionRatio,
		})
	}
	tr.Summarize()
	return tr, nil
}
