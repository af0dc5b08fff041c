// Package llm abstracts heterogeneous AI providers behind one completion
// interface and implements the failover client that drives them.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/CyberPrince-glitch/TechPlus/app/database"
)

// Supported provider names.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrEmptyCompletion is returned when a provider answers with a blank body.
var ErrEmptyCompletion = errors.New("provider returned empty completion")

// ErrMissingBody is returned when a provider answers with a title line only.
var ErrMissingBody = errors.New("provider returned completion without body")

// Prompt carries the system and user messages for one completion call.
type Prompt struct {
	System string
	User   string
}

// Completer is the uniform capability every provider implements. Adding a
// vendor means adding one implementation; the failover client never sees
// vendor specifics.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// CompleterFactory builds a Completer for a stored provider key.
type CompleterFactory func(key database.ProviderKey) (Completer, error)

// NewCompleter builds the provider client matching the key's provider name.
func NewCompleter(key database.ProviderKey, httpClient *http.Client) (Completer, error) {
	switch strings.ToLower(key.Provider) {
	case ProviderGemini:
		return NewGeminiClient(key.APIKey, key.Model, httpClient), nil
	case ProviderOpenAI:
		return NewOpenAIClient(key.APIKey, key.Model), nil
	case ProviderAnthropic:
		return NewAnthropicClient(key.APIKey, key.Model, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", key.Provider)
	}
}

// KnownProvider reports whether the provider name is supported.
func KnownProvider(provider string) bool {
	switch strings.ToLower(provider) {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return true
	}
	return false
}
