// Package quota owns the per-key daily usage counters. All mutation of usage
// numbers goes through the Ledger; callers reserve a unit before using a
// provider key, then either commit it after confirmed use or release it so
// quota is never spent on a call that failed before reaching the provider.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CyberPrince-glitch/TechPlus/app/database"
)

var (
	// ErrQuotaExceeded is returned when a key has no quota units left today.
	ErrQuotaExceeded = errors.New("daily quota exceeded")
	// ErrKeyInactive is returned when a key is deactivated or unknown.
	ErrKeyInactive = errors.New("provider key inactive")
)

// Clock supplies the current time; injectable so tests can simulate day
// rollover deterministically.
type Clock func() time.Time

// Ledger tracks per-provider-key daily usage against each key's ceiling.
type Ledger struct {
	keyRepo  database.KeyRepository
	clock    Clock
	location *time.Location
}

// NewLedger creates a ledger using the given reference timezone for the
// daily reset boundary.
func NewLedger(keyRepo database.KeyRepository, clock Clock, location *time.Location) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &Ledger{keyRepo: keyRepo, clock: clock, location: location}
}

// CurrentDay returns today's date in the reference timezone.
func (l *Ledger) CurrentDay() string {
	return l.clock().In(l.location).Format("2006-01-02")
}

// Reserve takes one quota unit for the key. The calendar rollover is applied
// before the reservation is evaluated, so a request at the day boundary never
// sees a stale counter. The grant itself is a single atomic
// compare-and-increment: concurrent reservations can never both take the
// last unit.
func (l *Ledger) Reserve(ctx context.Context, keyID string) error {
	day := l.CurrentDay()

	if err := l.keyRepo.TryRolloverUsage(ctx, keyID, day); err != nil {
		return fmt.Errorf("rollover before reserve: %w", err)
	}

	granted, err := l.keyRepo.ReserveUsage(ctx, keyID, day)
	if err != nil {
		return fmt.Errorf("reserve usage: %w", err)
	}
	if granted {
		return nil
	}

	// Denied: distinguish an inactive key from an exhausted one.
	key, err := l.keyRepo.GetKey(ctx, keyID)
	if err != nil {
		return fmt.Errorf("inspect denied key: %w", err)
	}
	if key == nil || !key.IsActive {
		return ErrKeyInactive
	}
	return ErrQuotaExceeded
}

// Commit marks a reserved unit as spent after confirmed successful use.
func (l *Ledger) Commit(ctx context.Context, keyID string) error {
	if err := l.keyRepo.CommitUsage(ctx, keyID, l.clock()); err != nil {
		return fmt.Errorf("commit usage: %w", err)
	}
	return nil
}

// Release returns a reserved unit that was never successfully used, restoring
// the key so a later Reserve can take the same unit again.
func (l *Ledger) Release(ctx context.Context, keyID string) error {
	if err := l.keyRepo.ReleaseUsage(ctx, keyID); err != nil {
		return fmt.Errorf("release usage: %w", err)
	}
	return nil
}

// ResetDaily zeroes usage counters for every key whose usage day has passed.
// Idempotent: running it twice on the same day is a no-op the second time.
func (l *Ledger) ResetDaily(ctx context.Context) (int64, error) {
	reset, err := l.keyRepo.ResetAllUsage(ctx, l.CurrentDay())
	if err != nil {
		return 0, fmt.Errorf("reset daily usage: %w", err)
	}
	return reset, nil
}
