package generation

import (
	"errors"
	"fmt"
)

// Supported request enumerations.
var (
	Languages = []string{"english", "hindi", "bangla"}
	Tones     = []string{"professional", "casual", "technical", "conversational"}
	Lengths   = []string{"short", "medium", "long"}
)

// Target word counts per length class.
var lengthTargets = map[string]int{
	"short":  500,
	"medium": 1200,
	"long":   2000,
}

// Request describes one content generation run. It exists only for the
// duration of the run.
type Request struct {
	Topics       []string
	Language     string
	Tone         string
	Length       string
	ArticleCount int
	IncludeSEO   bool
}

// Validate checks the request against the supported enumerations.
func (r *Request) Validate() error {
	if len(r.Topics) == 0 {
		return errors.New("at least one topic is required")
	}
	if r.Language == "" {
		r.Language = "english"
	}
	if !contains(Languages, r.Language) {
		return fmt.Errorf("unsupported language: %s", r.Language)
	}
	if r.Tone == "" {
		r.Tone = "professional"
	}
	if !contains(Tones, r.Tone) {
		return fmt.Errorf("unsupported tone: %s", r.Tone)
	}
	if r.Length == "" {
		r.Length = "medium"
	}
	if !contains(Lengths, r.Length) {
		return fmt.Errorf("unsupported length: %s", r.Length)
	}
	if r.ArticleCount < 1 || r.ArticleCount > 10 {
		return fmt.Errorf("article count must be between 1 and 10, got %d", r.ArticleCount)
	}
	return nil
}

// TargetWordCount returns the word count band midpoint for the length class.
func (r *Request) TargetWordCount() int {
	return lengthTargets[r.Length]
}

// ErrGenerationUnavailable is surfaced when every provider candidate was
// denied or failed; the run is not retried automatically.
var ErrGenerationUnavailable = errors.New("content generation unavailable")

// ErrNoOutput marks post-processing failures on an unusable provider
// response.
var ErrNoOutput = errors.New("provider response unusable")

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
