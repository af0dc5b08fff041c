package api

import (
	"context"
	"time"

	"github.com/CyberPrince-glitch/TechPlus/app/database"
	"github.com/CyberPrince-glitch/TechPlus/app/generation"
	"github.com/CyberPrince-glitch/TechPlus/app/llm"
	"github.com/CyberPrince-glitch/TechPlus/app/tasks"
)

type PipelineInterface interface {
	Run(ctx context.Context, request generation.Request) (*database.GeneratedContent, error)
}

var _ PipelineInterface = (*generation.Pipeline)(nil)

type KeyTesterInterface interface {
	TestKey(ctx context.Context, key database.ProviderKey) (string, error)
}

var _ KeyTesterInterface = (*llm.Client)(nil)

type Handler struct {
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository
	keyRepo     database.KeyRepository
	contentRepo database.ContentRepository
	pipeline    PipelineInterface
	keyTester   KeyTesterInterface
	scheduler   tasks.TaskSchedulerInterface
}

type GenerateRequest struct {
	Topics       []string `json:"topics" binding:"required"`
	Language     string   `json:"language"`
	Tone         string   `json:"tone"`
	Length       string   `json:"length"`
	ArticleCount int      `json:"article_count"`
	IncludeSEO   *bool    `json:"include_seo"`
}

type CreateKeyRequest struct {
	Provider          string `json:"provider" binding:"required"`
	Model             string `json:"model"`
	APIKey            string `json:"api_key" binding:"required"`
	Priority          int    `json:"priority"`
	MaxRequestsPerDay int    `json:"max_requests_per_day"`
}

type UpdateKeyRequest struct {
	Model             *string `json:"model"`
	Priority          *int    `json:"priority"`
	MaxRequestsPerDay *int    `json:"max_requests_per_day"`
	IsActive          *bool   `json:"is_active"`
}

type CreateFeedRequest struct {
	Title    string `json:"title" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Category string `json:"category"`
	Language string `json:"language"`
}

// KeyView is the serialized form of a provider key with the credential
// masked. Full keys never leave the store through the API.
type KeyView struct {
	ID                string     `json:"id"`
	Provider          string     `json:"provider"`
	Model             string     `json:"model"`
	APIKey            string     `json:"api_key"`
	Priority          int        `json:"priority"`
	MaxRequestsPerDay int        `json:"max_requests_per_day"`
	CurrentUsage      int        `json:"current_usage"`
	IsActive          bool       `json:"is_active"`
	LastTestedAt      *time.Time `json:"last_tested_at,omitempty"`
	LastTestOK        *bool      `json:"last_test_ok,omitempty"`
	LastUsedAt        *time.Time `json:"last_used_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type ArticleView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	Language    string    `json:"language"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url,omitempty"`
}

type ContentView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	Summary     string    `json:"summary"`
	Language    string    `json:"language"`
	Tone        string    `json:"tone"`
	WordCount   int       `json:"word_count"`
	SEOScore    int       `json:"seo_score"`
	Keywords    []string  `json:"keywords"`
	Tags        []string  `json:"tags"`
	SourceCount int       `json:"source_count"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

type FeedView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Category      string     `json:"category"`
	Language      string     `json:"language"`
	IsActive      bool       `json:"is_active"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
}
