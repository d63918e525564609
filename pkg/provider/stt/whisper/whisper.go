// Package whisper provides an STT provider backed by a local whisper.cpp
// server.
//
// It submits each recording as a single batch inference request to the
// whisper-server REST API (POST /inference) and maps the JSON response,
// including per-segment confidence detail when the server reports it, to an
// [stt.Transcript]. No API key or network egress is required, which makes it
// the offline alternative to the OpenAI backend.
//
// Usage:
//
//	p, err := whisper.New("http://localhost:8080", whisper.WithLanguage("en"))
//	tr, err := p.Transcribe(ctx, stt.Request{Audio: f, Filename: "audio.wav"})
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/speakbetter/speakbetter/pkg/provider/stt"
)

var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the language code sent to the whisper.cpp server (e.g.
// "en", "de"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements [stt.Provider] backed by a whisper.cpp HTTP server.
type Provider struct {
	serverURL  string
	language   string
	httpClient *http.Client
}

// New creates a Provider talking to the whisper-server at serverURL (e.g.
// "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("whisper: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  strings.TrimRight(serverURL, "/"),
		language:   "en",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// inferenceResponse mirrors whisper-server's JSON output with
// response_format=verbose_json.
type inferenceResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text             string  `json:"text"`
		Start            float64 `json:"start"`
		End              float64 `json:"end"`
		AvgLogprob       float64 `json:"avg_logprob"`
		NoSpeechProb     float64 `json:"no_speech_prob"`
		CompressionRatio float64 `json:"compression_ratio"`
	} `json:"segments"`
}

// Transcribe implements [stt.Provider].
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (*stt.Transcript, error) {
	filename := req.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := io.Copy(fw, req.Audio); err != nil {
		return nil, fmt.Errorf("whisper: write audio data: %w", err)
	}

	language := req.Language
	if language == "" {
		language = p.language
	}
	if language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("whisper: write language field: %w", err)
		}
	}
	if req.Prompt != "" {
		if err := mw.WriteField("prompt", req.Prompt); err != nil {
			return nil, fmt.Errorf("whisper: write prompt field: %w", err)
		}
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("whisper: write format field: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	endpoint := p.serverURL + "/inference"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("whisper: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("whisper: read response body: %w", err)
	}

	var result inferenceResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, stt.ErrNoSpeech
	}

	tr := &stt.Transcript{
		Text:     result.Text,
		Language: result.Language,
	}
	for _, s := range result.Segments {
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
