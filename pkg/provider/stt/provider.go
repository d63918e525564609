// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription service (the OpenAI audio API or a
// local whisper.cpp server) behind a uniform batch interface: one short
// recording in, one [Transcript] out. Pronunciation attempts are single words
// or short phrases, so there is no streaming surface; each call is a
// self-contained, fallible, time-bounded remote request controlled by its
// context.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"errors"
	"io"
)

// ErrNoSpeech is returned when the recording contained no recognizable
// speech at all. Callers should surface a "couldn't hear anything" response
// rather than grading an empty transcription.
var ErrNoSpeech = errors.New("stt: no speech detected")

// Request carries one recording and its recognition hints.
type Request struct {
	// Audio is the encoded recording. The reader is consumed by the call.
	Audio io.Reader

	// Filename conveys the container format to providers that sniff it from
	// the extension (e.g. "recording.webm", "audio.wav").
	Filename string

	// MIMEType of the recording, e.g. "audio/webm".
	MIMEType string

	// Prompt is an optional context hint passed to the recognizer, typically
	// naming the expected word to bias recognition.
	Prompt string

	// Language is an optional ISO 639-1 code. Empty lets the provider detect.
	Language string
}

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Transcribe submits one recording and blocks until the provider returns
	// a transcript or the context is cancelled. The returned Transcript is
	// never nil on success; its confidence fields may be.
	Transcribe(ctx context.Context, req Request) (*Transcript, error)
}
