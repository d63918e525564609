package resilience

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/speakbetter/speakbetter/pkg/provider/stt"
	sttmock "github.com/speakbetter/speakbetter/pkg/provider/stt/mock"
)

func TestSTTFallback_PrimarySuccess(t *testing.T) {
	primary := &sttmock.Provider{Transcript: &stt.Transcript{Text: "squirrel"}}
	secondary := &sttmock.Provider{Transcript: &stt.Transcript{Text: "unused"}}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	tr, err := fb.Transcribe(context.Background(), stt.Request{
		Audio:    bytes.NewReader([]byte("audio")),
		Filename: "a.webm",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Text != "squirrel" {
		t.Errorf("text = %q, want squirrel", tr.Text)
	}
	if got := len(primary.Calls()); got != 1 {
		t.Errorf("primary called %d times, want 1", got)
	}
	if got := len(secondary.Calls()); got != 0 {
		t.Errorf("secondary called %d times, want 0", got)
	}
}

func TestSTTFallback_FailoverReplaysAudio(t *testing.T) {
	primary := &sttmock.Provider{Err: errors.New("primary down")}
	secondary := &sttmock.Provider{Transcript: &stt.Transcript{Text: "rural"}}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	tr, err := fb.Transcribe(context.Background(), stt.Request{
		Audio: bytes.NewReader([]byte("audio-bytes")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Text != "rural" {
		t.Errorf("text = %q, want rural", tr.Text)
	}

	// The fallback received the full audio even though the primary already
	// consumed its copy of the stream.
	calls := secondary.Calls()
	if len(calls) != 1 {
		t.Fatalf("secondary called %d times, want 1", len(calls))
	}
	if string(calls[0].Audio) != "audio-bytes" {
		t.Errorf("fallback audio = %q, want full replay", calls[0].Audio)
	}
}

func TestSTTFallback_AllFail(t *testing.T) {
	primary := &sttmock.Provider{Err: errors.New("primary down")}
	secondary := &sttmock.Provider{Err: errors.New("secondary down")}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	_, err := fb.Transcribe(context.Background(), stt.Request{})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestSTTFallback_NoSpeechDoesNotFailOver(t *testing.T) {
	primary := &sttmock.Provider{Err: stt.ErrNoSpeech}
	secondary := &sttmock.Provider{Transcript: &stt.Transcript{Text: "should not be used"}}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1},
	})
	fb.AddFallback("secondary", secondary)

	_, err := fb.Transcribe(context.Background(), stt.Request{})
	if !errors.Is(err, stt.ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
	if got := len(secondary.Calls()); got != 0 {
		t.Errorf("secondary called %d times, want 0", got)
	}

	// No-speech verdicts never trip the breaker, so the primary keeps
	// receiving requests.
	_, err = fb.Transcribe(context.Background(), stt.Request{})
	if !errors.Is(err, stt.ErrNoSpeech) {
		t.Fatalf("second call err = %v, want ErrNoSpeech", err)
	}
	if got := len(primary.Calls()); got != 2 {
		t.Errorf("primary called %d times, want 2", got)
	}
}

func TestSTTFallback_BreakerSkipsPrimaryAfterTrip(t *testing.T) {
	primary := &sttmock.Provider{Err: errors.New("primary down")}
	secondary := &sttmock.Provider{Transcript: &stt.Transcript{Text: "strength"}}

	fb := NewSTTFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1},
	})
	fb.AddFallback("secondary", secondary)

	// First call trips the primary's breaker, second call skips it entirely.
	for range 2 {
		tr, err := fb.Transcribe(context.Background(), stt.Request{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.Text != "strength" {
			t.Errorf("text = %q, want strength", tr.Text)
		}
	}

	if got := len(primary.Calls()); got != 1 {
		t.Errorf("primary called %d times, want 1 (breaker open on second call)", got)
	}
}
