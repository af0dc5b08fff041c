package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contentRepository struct {
	db *DB
}

// NewContentRepository creates a new generated content repository
func NewContentRepository(db *DB) ContentRepository {
	return &contentRepository{db: db}
}

const contentColumns = `id, title, body, summary, language, tone, word_count,
	seo_score, keywords, tags, source_article_ids, provider_key_id, is_published, created_at`

func (r *contentRepository) InsertContent(ctx context.Context, content GeneratedContent) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	keywords, err := json.Marshal(emptyIfNil(content.Keywords))
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	tags, err := json.Marshal(emptyIfNil(content.Tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	sourceIDs, err := json.Marshal(emptyIfNil(content.SourceArticleIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal source article ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO generated_content (
			id, title, body, summary, language, tone, word_count, seo_score,
			keywords, tags, source_article_ids, provider_key_id, is_published, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, content.ID, content.Title, content.Body, content.Summary, content.Language,
		content.Tone, content.WordCount, content.SEOScore, string(keywords),
		string(tags), string(sourceIDs), nullableString(content.ProviderKeyID),
		boolToInt(content.IsPublished), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert generated content: %w", err)
	}
	return nil
}

func (r *contentRepository) GetContent(ctx context.Context, id string) (*GeneratedContent, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM generated_content WHERE id = ?`, id)
	content, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generated content: %w", err)
	}
	return content, nil
}

func (r *contentRepository) ListContent(ctx context.Context, language string, limit int) ([]GeneratedContent, error) {
	if language != "" {
		return r.queryContent(ctx, `
			SELECT `+contentColumns+` FROM generated_content
			WHERE language = ? ORDER BY created_at DESC LIMIT ?
		`, language, limit)
	}
	return r.queryContent(ctx, `
		SELECT `+contentColumns+` FROM generated_content
		ORDER BY created_at DESC LIMIT ?
	`, limit)
}

func (r *contentRepository) SearchContent(ctx context.Context, query string, limit int) ([]GeneratedContent, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return r.queryContent(ctx, `
		SELECT `+contentColumns+` FROM generated_content
		WHERE LOWER(title) LIKE ? OR LOWER(body) LIKE ?
		ORDER BY created_at DESC LIMIT ?
	`, pattern, pattern, limit)
}

func (r *contentRepository) SetPublished(ctx context.Context, id string, published bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE generated_content SET is_published = ? WHERE id = ?
	`, boolToInt(published), id)
	if err != nil {
		return false, fmt.Errorf("failed to update publish state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *contentRepository) GetContentStats(ctx context.Context) (int, int, error) {
	var total, published int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(is_published), 0) FROM generated_content
	`).Scan(&total, &published)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get content stats: %w", err)
	}
	return total, published, nil
}

func (r *contentRepository) queryContent(ctx context.Context, query string, args ...any) ([]GeneratedContent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query generated content: %w", err)
	}
	defer rows.Close()

	var items []GeneratedContent
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		items = append(items, *content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}
	return items, nil
}

func scanContent(scanner interface{ Scan(dest ...any) error }) (*GeneratedContent, error) {
	var (
		content     GeneratedContent
		keywordsRaw string
		tagsRaw     string
		sourceRaw   string
		keyID       nullString
		isPublished int
		createdRaw  string
	)
	if err := scanner.Scan(&content.ID, &content.Title, &content.Body,
		&content.Summary, &content.Language, &content.Tone, &content.WordCount,
		&content.SEOScore, &keywordsRaw, &tagsRaw, &sourceRaw, &keyID,
		&isPublished, &createdRaw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywordsRaw), &content.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsRaw), &content.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(sourceRaw), &content.SourceArticleIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source article ids: %w", err)
	}
	content.ProviderKeyID = keyID.String
	content.IsPublished = isPublished != 0
	if t, err := parseTimeString(createdRaw); err == nil {
		content.CreatedAt = t
	}
	return &content, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
