package whisper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/speakbetter/speakbetter/pkg/provider/stt"
)

func TestNew_RequiresServerURL(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") should fail")
	}
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	var gotLanguage, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotPrompt = r.FormValue("prompt")

		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			f.Close()
			if hdr.Filename != "attempt.wav" {
				t.Errorf("filename = %q, want attempt.wav", hdr.Filename)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": " Squirrel.",
			"language": "en",
			"segments": [
				{"text": " Squirrel.", "start": 0, "end": 1.2,
				 "avg_logprob": -0.25, "no_speech_prob": 0.05, "compression_ratio": 0.8}
			]
		}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tr, err := p.Transcribe(context.Background(), stt.Request{
		Audio:    strings.NewReader("fake-wav-bytes"),
		Filename: "attempt.wav",
		Prompt:   "squirrel",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if tr.Text != " Squirrel." {
		t.Fatalf("Text = %q", tr.Text)
	}
	if tr.AvgLogprob == nil || *tr.AvgLogprob != -0.25 {
		t.Fatalf("AvgLogprob = %v, want -0.25", tr.AvgLogprob)
	}
	if gotLanguage != "en" {
		t.Fatalf("language field = %q, want en", gotLanguage)
	}
	if gotPrompt != "squirrel" {
		t.Fatalf("prompt field = %q, want squirrel", gotPrompt)
	}
}

func TestTranscribe_EmptyTextIsNoSpeech(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "   "}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.Transcribe(context.Background(), stt.Request{Audio: strings.NewReader("x")})
	if !errors.Is(err, stt.ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Transcribe(context.Background(), stt.Request{Audio: strings.NewReader("x")}); err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}
