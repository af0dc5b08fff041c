package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type articleRepository struct {
	db *DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) ArticleRepository {
	return &articleRepository{db: db}
}

// InsertArticle inserts an article unless its fingerprint already exists.
// The unique fingerprint index makes the check-and-insert atomic across
// concurrent ingestions.
func (r *articleRepository) InsertArticle(ctx context.Context, feedID string, article NewArticle) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO articles (
			id, feed_id, title, summary, content, url, source, category,
			language, published_at, image_url, fingerprint, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO NOTHING
	`, uuid.NewString(), feedID, article.Title, article.Summary, article.Content,
		article.URL, article.Source, article.Category, article.Language,
		article.PublishedAt.UTC().Format(time.RFC3339Nano),
		nullableString(article.ImageURL), article.Fingerprint,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, fmt.Errorf("failed to insert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetRecentTitles returns titles of articles ingested after the given time,
// bounding the near-duplicate comparison to the trailing window.
func (r *articleRepository) GetRecentTitles(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT title FROM articles WHERE created_at >= ?
	`, since.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to query recent titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating titles: %w", err)
	}
	return titles, nil
}

// SearchArticles returns the most recent articles whose title, summary or
// category matches any of the given topics.
func (r *articleRepository) SearchArticles(ctx context.Context, topics []string, limit int) ([]Article, error) {
	if len(topics) == 0 {
		return r.GetArticles(ctx, "", limit)
	}

	var clauses []string
	var args []any
	for _, topic := range topics {
		pattern := "%" + strings.ToLower(topic) + "%"
		clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(summary) LIKE ? OR LOWER(category) = ?)")
		args = append(args, pattern, pattern, strings.ToLower(topic))
	}
	args = append(args, limit)

	query := `
		SELECT id, feed_id, title, summary, content, url, source, category,
		       language, published_at, image_url, fingerprint, created_at
		FROM articles
		WHERE ` + strings.Join(clauses, " OR ") + `
		ORDER BY created_at DESC
		LIMIT ?`

	return r.queryArticles(ctx, query, args...)
}

func (r *articleRepository) GetArticles(ctx context.Context, category string, limit int) ([]Article, error) {
	if category != "" {
		return r.queryArticles(ctx, `
			SELECT id, feed_id, title, summary, content, url, source, category,
			       language, published_at, image_url, fingerprint, created_at
			FROM articles WHERE category = ?
			ORDER BY created_at DESC LIMIT ?
		`, category, limit)
	}
	return r.queryArticles(ctx, `
		SELECT id, feed_id, title, summary, content, url, source, category,
		       language, published_at, image_url, fingerprint, created_at
		FROM articles ORDER BY created_at DESC LIMIT ?
	`, limit)
}

func (r *articleRepository) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func (r *articleRepository) queryArticles(ctx context.Context, query string, args ...any) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var (
			article      Article
			publishedRaw string
			imageURL     nullString
			createdRaw   string
		)
		if err := rows.Scan(&article.ID, &article.FeedID, &article.Title,
			&article.Summary, &article.Content, &article.URL, &article.Source,
			&article.Category, &article.Language, &publishedRaw, &imageURL,
			&article.Fingerprint, &createdRaw); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		article.ImageURL = imageURL.String
		if t, err := parseTimeString(publishedRaw); err == nil {
			article.PublishedAt = t
		}
		if t, err := parseTimeString(createdRaw); err == nil {
			article.CreatedAt = t
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}
	return articles, nil
}
