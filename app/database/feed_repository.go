package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type feedRepository struct {
	db *DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *DB) FeedRepository {
	return &feedRepository{db: db}
}

// UpsertFeed inserts a feed source or updates its metadata when the URL is
// already registered. Returns the feed id.
func (r *feedRepository) UpsertFeed(ctx context.Context, title, url, category, language string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM feeds WHERE url = ?`, url).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		id = uuid.NewString()
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO feeds (id, title, url, category, language, is_active, created_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)
		`, id, title, url, category, language, time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return "", fmt.Errorf("failed to insert feed: %w", err)
		}
		return id, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check existing feed: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE feeds SET title = ?, category = ?, language = ? WHERE id = ?
	`, title, category, language, id)
	if err != nil {
		return "", fmt.Errorf("failed to update feed: %w", err)
	}
	return id, nil
}

func (r *feedRepository) GetFeed(ctx context.Context, id string) (*Feed, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, url, category, language, is_active, last_fetched_at, created_at
		FROM feeds WHERE id = ?
	`, id)

	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return feed, nil
}

func (r *feedRepository) GetActiveFeeds(ctx context.Context) ([]Feed, error) {
	return r.queryFeeds(ctx, `
		SELECT id, title, url, category, language, is_active, last_fetched_at, created_at
		FROM feeds WHERE is_active = 1 ORDER BY created_at
	`)
}

func (r *feedRepository) GetAllFeeds(ctx context.Context) ([]Feed, error) {
	return r.queryFeeds(ctx, `
		SELECT id, title, url, category, language, is_active, last_fetched_at, created_at
		FROM feeds ORDER BY created_at
	`)
}

func (r *feedRepository) GetFeedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feeds`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

func (r *feedRepository) UpdateLastFetched(ctx context.Context, id string, fetchedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE feeds SET last_fetched_at = ? WHERE id = ?
	`, fetchedAt.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to update last fetched time: %w", err)
	}
	return nil
}

func (r *feedRepository) DeleteFeed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete feed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *feedRepository) queryFeeds(ctx context.Context, query string) ([]Feed, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}
	return feeds, nil
}

func scanFeed(scanner interface{ Scan(dest ...any) error }) (*Feed, error) {
	var (
		feed       Feed
		isActive   int
		lastFetch  sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(&feed.ID, &feed.Title, &feed.URL, &feed.Category,
		&feed.Language, &isActive, &lastFetch, &createdRaw); err != nil {
		return nil, err
	}
	feed.IsActive = isActive != 0
	if lastFetch.Valid {
		if t, err := parseTimeString(lastFetch.String); err == nil {
			feed.LastFetchedAt = &t
		}
	}
	if t, err := parseTimeString(createdRaw); err == nil {
		feed.CreatedAt = t
	}
	return &feed, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
