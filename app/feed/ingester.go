package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CyberPrince-glitch/TechPlus/app/database"
)

// Ingester merges fetched entries into the article store, suppressing exact
// and near-duplicate headlines. Exact duplicates are caught by the store's
// unique fingerprint index (atomic test-and-insert, safe across concurrent
// feeds); near-duplicates by token-set similarity against titles ingested
// within the trailing window.
type Ingester struct {
	articleRepo database.ArticleRepository
	similarity  float64
	window      time.Duration
}

// NewIngester creates a new ingester with the given near-duplicate policy.
func NewIngester(articleRepo database.ArticleRepository, similarity float64, window time.Duration) *Ingester {
	return &Ingester{
		articleRepo: articleRepo,
		similarity:  similarity,
		window:      window,
	}
}

// Ingest processes one feed's candidate entries sequentially. Entries within
// a feed must stay sequential so the running near-duplicate window includes
// titles accepted earlier in the same run.
func (i *Ingester) Ingest(ctx context.Context, feed database.Feed, entries []Entry) (IngestResult, error) {
	var result IngestResult
	if len(entries) == 0 {
		return result, nil
	}

	since := time.Now().UTC().Add(-i.window)
	recentTitles, err := i.articleRepo.GetRecentTitles(ctx, since)
	if err != nil {
		return result, fmt.Errorf("failed to load recent titles: %w", err)
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if i.isNearDuplicate(entry.Title, recentTitles) {
			result.Duplicates++
			continue
		}

		inserted, err := i.articleRepo.InsertArticle(ctx, feed.ID, database.NewArticle{
			Title:       entry.Title,
			Summary:     entry.Summary,
			Content:     entry.Summary,
			URL:         entry.Link,
			Source:      feed.Title,
			Category:    feed.Category,
			Language:    feed.Language,
			PublishedAt: entry.PublishedAt,
			ImageURL:    entry.ImageURL,
			Fingerprint: Fingerprint(entry.Title),
		})
		if err != nil {
			return result, fmt.Errorf("failed to insert article: %w", err)
		}

		if inserted {
			result.Accepted++
			recentTitles = append(recentTitles, entry.Title)
		} else {
			result.Duplicates++
		}
	}

	slog.Debug("Ingested feed entries", "feed", feed.Title,
		"accepted", result.Accepted, "duplicates", result.Duplicates)

	return result, nil
}

func (i *Ingester) isNearDuplicate(title string, recentTitles []string) bool {
	normalized := NormalizeTitle(title)
	for _, recent := range recentTitles {
		if NormalizeTitle(recent) == normalized {
			// Exact match also gets caught by the fingerprint index; skipping
			// here avoids a doomed insert.
			return true
		}
		if TitleSimilarity(title, recent) >= i.similarity {
			return true
		}
	}
	return false
}
