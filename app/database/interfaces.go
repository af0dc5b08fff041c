package database

import (
	"context"
	"time"
)

type FeedRepository interface {
	GetFeed(ctx context.Context, id string) (*Feed, error)
	GetActiveFeeds(ctx context.Context) ([]Feed, error)
	GetAllFeeds(ctx context.Context) ([]Feed, error)
	GetFeedCount(ctx context.Context) (int, error)

	UpsertFeed(ctx context.Context, title, url, category, language string) (string, error)
	UpdateLastFetched(ctx context.Context, id string, fetchedAt time.Time) error
	DeleteFeed(ctx context.Context, id string) (bool, error)
}

// NewArticle carries the fields of a candidate article prior to insertion.
type NewArticle struct {
	Title       string
	Summary     string
	Content     string
	URL         string
	Source      string
	Category    string
	Language    string
	PublishedAt time.Time
	ImageURL    string
	Fingerprint string
}

type ArticleRepository interface {
	// InsertArticle inserts the article unless its fingerprint is already
	// present. Returns false when the insert was suppressed as a duplicate.
	InsertArticle(ctx context.Context, feedID string, article NewArticle) (bool, error)

	GetRecentTitles(ctx context.Context, since time.Time) ([]string, error)
	SearchArticles(ctx context.Context, topics []string, limit int) ([]Article, error)
	GetArticles(ctx context.Context, category string, limit int) ([]Article, error)
	GetArticleCount(ctx context.Context) (int, error)
}

type KeyRepository interface {
	GetKey(ctx context.Context, id string) (*ProviderKey, error)
	// GetCandidateKeys returns active keys ordered by priority ascending,
	// then current usage ascending.
	GetCandidateKeys(ctx context.Context) ([]ProviderKey, error)
	GetAllKeys(ctx context.Context) ([]ProviderKey, error)

	InsertKey(ctx context.Context, key ProviderKey) error
	UpdateKey(ctx context.Context, id string, updates KeyUpdates) (bool, error)
	DeleteKey(ctx context.Context, id string) (bool, error)
	MarkTested(ctx context.Context, id string, ok bool, testedAt time.Time) error

	// Quota state transitions. ReserveUsage performs an atomic
	// compare-and-increment and is the only grant path; TryRolloverUsage
	// zeroes the counter when the stored usage day precedes the given day.
	TryRolloverUsage(ctx context.Context, id string, day string) error
	ReserveUsage(ctx context.Context, id string, day string) (bool, error)
	ReleaseUsage(ctx context.Context, id string) error
	CommitUsage(ctx context.Context, id string, usedAt time.Time) error
	ResetAllUsage(ctx context.Context, day string) (int64, error)
}

// KeyUpdates holds optional provider key mutations; nil fields are left as-is.
type KeyUpdates struct {
	Model             *string
	Priority          *int
	MaxRequestsPerDay *int
	IsActive          *bool
}

type ContentRepository interface {
	InsertContent(ctx context.Context, content GeneratedContent) error
	GetContent(ctx context.Context, id string) (*GeneratedContent, error)
	ListContent(ctx context.Context, language string, limit int) ([]GeneratedContent, error)
	SearchContent(ctx context.Context, query string, limit int) ([]GeneratedContent, error)
	SetPublished(ctx context.Context, id string, published bool) (bool, error)
	GetContentStats(ctx context.Context) (total, published int, err error)
}
