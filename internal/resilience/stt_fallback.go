package resilience

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/speakbetter/speakbetter/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] with automatic failover across
// multiple transcription backends. Each backend has its own circuit breaker.
type STTFallback struct {
	group *FallbackGroup[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred
// backend.
func NewSTTFallback(primary stt.Provider, primaryName string, cfg FallbackConfig) *STTFallback {
	return &STTFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional transcription provider as a fallback.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	f.group.AddFallback(name, provider)
}

// transcribeOutcome lets a no-speech verdict pass through the fallback group
// as a success: it is a statement about the audio, not a backend failure, so
// it must neither trip the circuit breaker nor trigger failover.
type transcribeOutcome struct {
	tr       *stt.Transcript
	noSpeech bool
}

// Transcribe runs the request against the first healthy provider. The audio
// stream is buffered once so that a failover attempt can replay it.
func (f *STTFallback) Transcribe(ctx context.Context, req stt.Request) (*stt.Transcript, error) {
	var audio []byte
	if req.Audio != nil {
		var err error
		if audio, err = io.ReadAll(req.Audio); err != nil {
			return nil, fmt.Errorf("resilience: read audio: %w", err)
		}
	}

	out, err := ExecuteWithResult(f.group, func(p stt.Provider) (transcribeOutcome, error) {
		attempt := req
		if audio != nil {
			attempt.Audio = bytes.NewReader(audio)
		}
		tr, err := p.Transcribe(ctx, attempt)
		if errors.Is(err, stt.ErrNoSpeech) {
			return transcribeOutcome{noSpeech: true}, nil
		}
		return transcribeOutcome{tr: tr}, err
	})
	if err != nil {
		return nil, err
	}
	if out.noSpeech {
		return nil, stt.ErrNoSpeech
	}
	return out.tr, nil
}
