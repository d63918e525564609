// Package mock provides a scriptable in-memory [stt.Provider] for tests.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/speakbetter/speakbetter/pkg/provider/stt"
)

var _ stt.Provider = (*Provider)(nil)

// Call records a single invocation of Transcribe.
type Call struct {
	// Audio is a copy of the bytes read from the request.
	Audio []byte

	Filename string
	Prompt   string
	Language string
}

// Provider implements [stt.Provider] with scripted responses. Safe for
// concurrent use.
type Provider struct {
	mu sync.Mutex

	// Transcript is returned by every Transcribe call unless Script is set.
	Transcript *stt.Transcript

	// Err, when non-nil, is returned instead of a transcript.
	Err error

	// Script, when non-empty, is consumed one entry per call; after the last
	// entry the provider falls back to Transcript/Err.
	Script []func(req stt.Request) (*stt.Transcript, error)

	calls []Call
}

// Transcribe implements [stt.Provider].
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (*stt.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var audio []byte
	if req.Audio != nil {
		audio, _ = io.ReadAll(req.Audio)
	}

	p.mu.Lock()
	p.calls = append(p.calls, Call{
		Audio:    audio,
		Filename: req.Filename,
		Prompt:   req.Prompt,
		Language: req.Language,
	})
	var scripted func(stt.Request) (*stt.Transcript, error)
	if len(p.Script) > 0 {
		scripted = p.Script[0]
		p.Script = p.Script[1:]
	}
	p.mu.Unlock()

	if scripted != nil {
		return scripted(req)
	}
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Transcript != nil {
		cp := *p.Transcript
		return &cp, nil
	}
	return &stt.Transcript{Text: ""}, stt.ErrNoSpeech
}

// Calls returns a copy of all recorded invocations.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}
