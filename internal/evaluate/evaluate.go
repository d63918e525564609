package evaluate

// ConfidenceMeta carries the optional confidence metadata a transcription
// provider may return alongside the text. All fields are nil when the
// provider gave no such data; nil is preserved end to end rather than
// defaulted.
type ConfidenceMeta struct {
	// AvgLogprob is the average log-probability across transcript segments.
	AvgLogprob *float64

	// NoSpeechProb is the provider's probability that the audio contained no
	// speech at all.
	NoSpeechProb *float64

	// CompressionRatio is the provider's text compression ratio; high values
	// often indicate noisy audio.
	CompressionRatio *float64
}

// Result is the outcome of evaluating one transcription against a target.
// It is the single evaluation-result shape consumed by the attempt ledger —
// there is no legacy boolean form.
type Result struct {
	// Transcription is the raw text returned by the provider.
	Transcription string `json:"transcription"`

	// Target is the word the user was prompted to pronounce.
	Target string `json:"target"`

	// Grade is derived solely from SimilarityScore.
	Grade Grade `json:"grade"`

	// SimilarityScore is the 0–100 edit-distance-based closeness score.
	SimilarityScore int `json:"similarityScore"`

	// ClarityScore is the 0–100 confidence-derived score, nil when the
	// provider returned no confidence metadata. Informational only.
	ClarityScore *int `json:"clarityScore"`

	// IsCorrect is derived (Grade == GradeCorrect). Retained for consumers
	// that only care about the binary outcome.
	IsCorrect bool `json:"isCorrect"`
}

// Evaluate scores transcription against target and returns the full [Result].
// It never fails: absent input yields a similarity of 0 and an incorrect
// grade, and missing confidence metadata yields a nil clarity score.
func Evaluate(transcription, target string, meta ConfidenceMeta) Result {
	similarity := Similarity(transcription, target)
	grade := GradeFor(similarity)

	return Result{
		Transcription:   transcription,
		Target:          target,
		Grade:           grade,
		SimilarityScore: similarity,
		ClarityScore:    Clarity(meta.AvgLogprob),
		IsCorrect:       grade == GradeCorrect,
	}
}
