package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/CyberPrince-glitch/TechPlus/app/database"
	"github.com/CyberPrince-glitch/TechPlus/app/quota"
)

// AttemptFailure records why one candidate key did not produce output.
type AttemptFailure struct {
	KeyID    string `json:"key_id"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Reason   string `json:"reason"`
}

// ExhaustedError is the terminal failure of one generation attempt: every
// candidate key was denied or failed. It carries one reason per attempted key
// for diagnostics.
type ExhaustedError struct {
	Attempts []AttemptFailure
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no provider keys available"
	}
	reasons := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		reasons = append(reasons, fmt.Sprintf("%s/%s: %s", attempt.Provider, attempt.Model, attempt.Reason))
	}
	return "all provider keys exhausted: " + strings.Join(reasons, "; ")
}

// Result is a successful generation with the key that produced it.
type Result struct {
	Text  string
	KeyID string
}

// Client selects a usable provider key, issues the completion call, and
// fails over to the next candidate on transient failure. First success wins.
type Client struct {
	keyRepo database.KeyRepository
	ledger  *quota.Ledger
	factory CompleterFactory
	timeout time.Duration
}

// NewClient creates a failover client. Each provider call is bounded by the
// given timeout so one slow provider cannot stall the whole candidate list.
func NewClient(keyRepo database.KeyRepository, ledger *quota.Ledger, factory CompleterFactory, timeout time.Duration) *Client {
	return &Client{
		keyRepo: keyRepo,
		ledger:  ledger,
		factory: factory,
		timeout: timeout,
	}
}

// Generate walks the candidate list in failover order: reserve quota, call
// the provider, commit on usable output, release and continue on failure.
// A ledger denial skips the key without counting it as a provider failure.
func (c *Client) Generate(ctx context.Context, prompt Prompt) (Result, error) {
	candidates, err := c.keyRepo.GetCandidateKeys(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list candidate keys: %w", err)
	}

	var attempts []AttemptFailure

	for _, key := range candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		reserveErr := c.ledger.Reserve(ctx, key.ID)
		if errors.Is(reserveErr, quota.ErrQuotaExceeded) || errors.Is(reserveErr, quota.ErrKeyInactive) {
			attempts = append(attempts, failure(key, reserveErr.Error()))
			continue
		}
		if reserveErr != nil {
			return Result{}, fmt.Errorf("failed to reserve quota: %w", reserveErr)
		}

		text, callErr := c.callProvider(ctx, key, prompt)

		// Ledger bookkeeping runs on a detached context: a caller that
		// cancels mid-call must not strand the reservation until rollover.
		bookCtx := context.WithoutCancel(ctx)

		if callErr == nil {
			// Output confirmed usable: only now does the reservation become
			// a committed unit.
			if err := c.ledger.Commit(bookCtx, key.ID); err != nil {
				slog.Warn("Failed to commit quota usage", "key_id", key.ID, "error", err)
			}
			if err := c.keyRepo.MarkTested(bookCtx, key.ID, true, time.Now().UTC()); err != nil {
				slog.Warn("Failed to mark key status", "key_id", key.ID, "error", err)
			}
			return Result{Text: text, KeyID: key.ID}, nil
		}

		if err := c.ledger.Release(bookCtx, key.ID); err != nil {
			slog.Warn("Failed to release quota reservation", "key_id", key.ID, "error", err)
		}

		// Caller abandoned the run: stop instead of burning through the
		// remaining candidates.
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		if err := c.keyRepo.MarkTested(bookCtx, key.ID, false, time.Now().UTC()); err != nil {
			slog.Warn("Failed to mark key status", "key_id", key.ID, "error", err)
		}

		slog.Warn("Provider call failed, trying next candidate",
			"provider", key.Provider, "model", key.Model, "error", callErr)
		attempts = append(attempts, failure(key, callErr.Error()))
	}

	return Result{}, &ExhaustedError{Attempts: attempts}
}

// TestKey issues a minimal completion against the key and records the result.
func (c *Client) TestKey(ctx context.Context, key database.ProviderKey) (string, error) {
	completer, err := c.factory(key)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := completer.Complete(callCtx, Prompt{
		System: "You are a helpful assistant.",
		User:   "Say 'API key test successful' and nothing else.",
	})

	ok := err == nil
	if markErr := c.keyRepo.MarkTested(ctx, key.ID, ok, time.Now().UTC()); markErr != nil {
		slog.Warn("Failed to record key test result", "key_id", key.ID, "error", markErr)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) callProvider(ctx context.Context, key database.ProviderKey, prompt Prompt) (string, error) {
	completer, err := c.factory(key)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := completer.Complete(callCtx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	if !hasBody(text) {
		return "", ErrMissingBody
	}
	return text, nil
}

// hasBody reports whether the completion carries content past the title
// line. A bare headline cannot become an article, so it counts as unusable
// and the reservation is released rather than committed.
func hasBody(text string) bool {
	_, rest, found := strings.Cut(strings.TrimSpace(text), "\n")
	return found && strings.TrimSpace(rest) != ""
}

func failure(key database.ProviderKey, reason string) AttemptFailure {
	return AttemptFailure{
		KeyID:    key.ID,
		Provider: key.Provider,
		Model:    key.Model,
		Reason:   reason,
	}
}
