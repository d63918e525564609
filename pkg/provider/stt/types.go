package stt

// Segment is one recognized span of speech with its confidence signals, as
// reported by Whisper-family models in verbose output.
type Segment struct {
	Text             string   `json:"text"`
	Start            float64  `json:"start"`
	End              float64  `json:"end"`
	AvgLogprob       *float64 `json:"avg_logprob"`
	NoSpeechProb     *float64 `json:"no_speech_prob"`
	CompressionRatio *float64 `json:"compression_ratio"`
}

// Transcript is the result of one batch transcription. The confidence fields
// are nil when the provider does not report them; callers must preserve that
// absence rather than substituting zero.
type Transcript struct {
	// Text is the transcribed speech, untrimmed.
	Text string `json:"text"`

	// Language is the detected or requested language, when reported.
	Language string `json:"language,omitempty"`

	// Duration of the recognized audio in seconds, when reported.
	Duration *float64 `json:"duration,omitempty"`

	// AvgLogprob is the mean per-segment average log probability. More
	// negative means the recognizer was less certain.
	AvgLogprob *float64 `json:"avgLogprob"`

	// NoSpeechProb is the probability that the audio contained no speech.
	NoSpeechProb *float64 `json:"noSpeechProb"`

	// CompressionRatio of the recognized text; high values suggest noise or
	// repetitive artifacts.
	CompressionRatio *float64 `json:"compressionRatio"`

	// Segments is the raw per-span detail when the provider emits it.
	Segments []Segment `json:"segments,omitempty"`
}

// Summarize fills the transcript-level confidence fields from Segments when
// they are unset, averaging across segments that report a value.
func (t *Transcript) Summarize() {
	if len(t.Segments) == 0 {
		return
	}
	if t.AvgLogprob == nil {
		t.AvgLogprob = segmentMean(t.Segments, func(s Segment) *float64 { return s.AvgLogprob })
	}
	if t.NoSpeechProb == nil {
		t.NoSpeechProb = segmentMean(t.Segments, func(s Segment) *float64 { return s.NoSpeechProb })
	}
	if t.CompressionRatio == nil {
		t.CompressionRatio = segmentMean(t.Segments, func(s Segment) *float64 { return s.CompressionRatio })
	}
}

func segmentMean(segs []Segment, get func(Segment) *float64) *float64 {
	var sum float64
	n := 0
	for _, s := range segs {
		if v := get(s); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}
