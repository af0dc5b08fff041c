package database

import (
	"time"
)

type Feed struct {
	ID            string
	Title         string
	URL           string
	Category      string
	Language      string
	IsActive      bool
	LastFetchedAt *time.Time
	CreatedAt     time.Time
}

type Article struct {
	ID          string
	FeedID      string
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
	CreatedAt   time.Time
}

// ProviderKey holds one AI provider credential with its daily quota state.
// Usage counters are mutated only through the quota ledger.
type ProviderKey struct {
	ID                string
	Provider          string // gemini, openai, anthropic
	Model             string
	APIKey            string
	Priority          int // lower = tried first
	MaxRequestsPerDay int
	CurrentUsage      int
	UsageDay          string // YYYY-MM-DD in the reference timezone
	IsActive          bool
	LastTestedAt      *time.Time
	LastTestOK        *bool
	LastUsedAt        *time.Time
	CreatedAt         time.Time
}

type GeneratedContent struct {
	ID               string
	Title            string
	Body             string
	Summary          string
	Language         string
	Tone             string
	WordCount        int
	SEOScore         int
	Keywords         []string
	Tags             []string
	SourceArticleIDs []string
	ProviderKeyID    string
	IsPublished      bool
	CreatedAt        time.Time
}
