package evaluate

import "math"

// Clarity maps a provider's average log-probability to a 0–100 clarity score.
//
// Whisper-style log-probabilities live roughly in [-1, 0]; values near -0.1
// mean high confidence and values near -1.0 mean near-none. The input is
// clamped into [-1, 0], remapped linearly via (p+1)/0.9 clamped to [0, 1],
// scaled to [0, 100], and rounded.
//
// A nil input means the provider returned no confidence metadata; nil is
// passed through unchanged. Callers must not substitute a numeric placeholder
// — a stored 0 would read as "completely unclear", which is not what an
// absent measurement means.
func Clarity(avgLogprob *float64) *int {
	if avgLogprob == nil {
		return nil
	}

	p := *avgLogprob
	if p < -1 {
		p = -1
	}
	if p > 0 {
		p = 0
	}

	normalized := (p + 1) / 0.9
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	score := int(math.Round(normalized * 100))
	return &score
}
