package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type keyRepository struct {
	db *DB
}

// NewKeyRepository creates a new provider key repository
func NewKeyRepository(db *DB) KeyRepository {
	return &keyRepository{db: db}
}

const keyColumns = `id, provider, model, api_key, priority, max_requests_per_day,
	current_usage, usage_day, is_active, last_tested_at, last_test_ok, last_used_at, created_at`

func (r *keyRepository) InsertKey(ctx context.Context, key ProviderKey) error {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO provider_keys (
			id, provider, model, api_key, priority, max_requests_per_day,
			current_usage, usage_day, is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, key.ID, key.Provider, key.Model, key.APIKey, key.Priority,
		key.MaxRequestsPerDay, key.CurrentUsage, key.UsageDay,
		boolToInt(key.IsActive), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert provider key: %w", err)
	}
	return nil
}

func (r *keyRepository) GetKey(ctx context.Context, id string) (*ProviderKey, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+keyColumns+` FROM provider_keys WHERE id = ?`, id)
	key, err := scanKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider key: %w", err)
	}
	return key, nil
}

// GetCandidateKeys returns active keys in failover order: priority ascending,
// then current usage ascending to balance load among equal-priority keys.
func (r *keyRepository) GetCandidateKeys(ctx context.Context) ([]ProviderKey, error) {
	return r.queryKeys(ctx, `
		SELECT `+keyColumns+` FROM provider_keys
		WHERE is_active = 1
		ORDER BY priority ASC, current_usage ASC, created_at ASC
	`)
}

func (r *keyRepository) GetAllKeys(ctx context.Context) ([]ProviderKey, error) {
	return r.queryKeys(ctx, `
		SELECT `+keyColumns+` FROM provider_keys ORDER BY priority ASC, created_at ASC
	`)
}

func (r *keyRepository) UpdateKey(ctx context.Context, id string, updates KeyUpdates) (bool, error) {
	var sets []string
	var args []any
	if updates.Model != nil {
		sets = append(sets, "model = ?")
		args = append(args, *updates.Model)
	}
	if updates.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *updates.Priority)
	}
	if updates.MaxRequestsPerDay != nil {
		sets = append(sets, "max_requests_per_day = ?")
		args = append(args, *updates.MaxRequestsPerDay)
	}
	if updates.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, boolToInt(*updates.IsActive))
	}
	if len(sets) == 0 {
		return false, nil
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		`UPDATE provider_keys SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update provider key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *keyRepository) DeleteKey(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM provider_keys WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete provider key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *keyRepository) MarkTested(ctx context.Context, id string, ok bool, testedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE provider_keys SET last_tested_at = ?, last_test_ok = ? WHERE id = ?
	`, testedAt.UTC().Format(time.RFC3339Nano), boolToInt(ok), id)
	if err != nil {
		return fmt.Errorf("failed to mark provider key tested: %w", err)
	}
	return nil
}

// TryRolloverUsage zeroes the usage counter when the stored usage day
// precedes the given day. Applied before reservation so a reservation at the
// day boundary never observes a stale counter.
func (r *keyRepository) TryRolloverUsage(ctx context.Context, id string, day string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE provider_keys SET current_usage = 0, usage_day = ?
		WHERE id = ? AND usage_day < ?
	`, day, id, day)
	if err != nil {
		return fmt.Errorf("failed to roll over usage: %w", err)
	}
	return nil
}

// ReserveUsage atomically increments the usage counter only while it is below
// the daily ceiling. A single conditional UPDATE means two concurrent
// reservations can never both take the last unit.
func (r *keyRepository) ReserveUsage(ctx context.Context, id string, day string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE provider_keys
		SET current_usage = current_usage + 1
		WHERE id = ? AND is_active = 1 AND usage_day = ?
		  AND current_usage < max_requests_per_day
	`, id, day)
	if err != nil {
		return false, fmt.Errorf("failed to reserve usage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ReleaseUsage returns one reserved unit. The floor guard keeps a stray
// release from driving the counter negative.
func (r *keyRepository) ReleaseUsage(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE provider_keys
		SET current_usage = current_usage - 1
		WHERE id = ? AND current_usage > 0
	`, id)
	if err != nil {
		return fmt.Errorf("failed to release usage: %w", err)
	}
	return nil
}

func (r *keyRepository) CommitUsage(ctx context.Context, id string, usedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE provider_keys SET last_used_at = ? WHERE id = ?
	`, usedAt.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to commit usage: %w", err)
	}
	return nil
}

func (r *keyRepository) ResetAllUsage(ctx context.Context, day string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE provider_keys SET current_usage = 0, usage_day = ?
		WHERE usage_day < ?
	`, day, day)
	if err != nil {
		return 0, fmt.Errorf("failed to reset usage: %w", err)
	}
	return res.RowsAffected()
}

func (r *keyRepository) queryKeys(ctx context.Context, query string) ([]ProviderKey, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query provider keys: %w", err)
	}
	defer rows.Close()

	var keys []ProviderKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider key row: %w", err)
		}
		keys = append(keys, *key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating provider key rows: %w", err)
	}
	return keys, nil
}

func scanKey(scanner interface{ Scan(dest ...any) error }) (*ProviderKey, error) {
	var (
		key        ProviderKey
		isActive   int
		testedRaw  nullString
		testOK     sql.NullInt64
		usedRaw    nullString
		createdRaw string
	)
	if err := scanner.Scan(&key.ID, &key.Provider, &key.Model, &key.APIKey,
		&key.Priority, &key.MaxRequestsPerDay, &key.CurrentUsage, &key.UsageDay,
		&isActive, &testedRaw, &testOK, &usedRaw, &createdRaw); err != nil {
		return nil, err
	}
	key.IsActive = isActive != 0
	if testedRaw.Valid {
		if t, err := parseTimeString(testedRaw.String); err == nil {
			key.LastTestedAt = &t
		}
	}
	if testOK.Valid {
		ok := testOK.Int64 != 0
		key.LastTestOK = &ok
	}
	if usedRaw.Valid {
		if t, err := parseTimeString(usedRaw.String); err == nil {
			key.LastUsedAt = &t
		}
	}
	if t, err := parseTimeString(createdRaw); err == nil {
		key.CreatedAt = t
	}
	return &key, nil
}
