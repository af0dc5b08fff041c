package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/CyberPrince-glitch/TechPlus/app/database"
	"github.com/CyberPrince-glitch/TechPlus/app/llm"
)

const (
	summaryRunes = 200

	// Score floor adjustment when synthesis proceeded from topics alone,
	// without grounding source articles.
	groundingPenalty = 10

	// Flat score stored when the caller opted out of SEO optimization.
	baseScoreWithoutSEO = 85
)

// TextGenerator is the failover client capability the pipeline depends on.
type TextGenerator interface {
	Generate(ctx context.Context, prompt llm.Prompt) (llm.Result, error)
}

// PipelineError wraps a failure in one pipeline stage.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Pipeline composes source articles into a prompt, drives the failover
// client, post-processes the result, and persists it as generated content.
type Pipeline struct {
	articleRepo database.ArticleRepository
	contentRepo database.ContentRepository
	generator   TextGenerator
}

// NewPipeline creates a generation pipeline.
func NewPipeline(articleRepo database.ArticleRepository, contentRepo database.ContentRepository, generator TextGenerator) *Pipeline {
	return &Pipeline{
		articleRepo: articleRepo,
		contentRepo: contentRepo,
		generator:   generator,
	}
}

// Run executes one generation request end to end. A failed run persists
// nothing: the content record is written only after post-processing fully
// succeeds.
func (p *Pipeline) Run(ctx context.Context, request Request) (*database.GeneratedContent, error) {
	if err := request.Validate(); err != nil {
		return nil, &PipelineError{Stage: "validate", Err: err}
	}

	// Empty selection is not fatal: synthesis can proceed from topics alone,
	// with the SEO score reflecting the reduced grounding.
	sources, err := p.articleRepo.SearchArticles(ctx, request.Topics, request.ArticleCount)
	if err != nil {
		return nil, &PipelineError{Stage: "select", Err: err}
	}

	prompt := ComposePrompt(request, sources)

	result, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		var exhausted *llm.ExhaustedError
		if errors.As(err, &exhausted) {
			return nil, fmt.Errorf("%w: %w", ErrGenerationUnavailable, exhausted)
		}
		return nil, &PipelineError{Stage: "generate", Err: err}
	}

	content, err := p.postProcess(request, sources, result)
	if err != nil {
		return nil, &PipelineError{Stage: "post-process", Err: err}
	}

	if err := p.contentRepo.InsertContent(ctx, *content); err != nil {
		return nil, &PipelineError{Stage: "persist", Err: err}
	}

	slog.Info("Generated content", "id", content.ID, "title", content.Title,
		"language", content.Language, "words", content.WordCount,
		"seo_score", content.SEOScore, "sources", len(sources))

	return content, nil
}

func (p *Pipeline) postProcess(request Request, sources []database.Article, result llm.Result) (*database.GeneratedContent, error) {
	title, body := splitTitle(result.Text)
	if title == "" || body == "" {
		return nil, ErrNoOutput
	}

	summary := truncateRunes(body, summaryRunes)
	keywords := mergeTopicKeywords(ExtractKeywords(result.Text), request.Topics)
	tags := ExtractTags(result.Text)

	score := baseScoreWithoutSEO
	if request.IncludeSEO {
		score = SEOScore(title, body, summary, keywords, tags, request.TargetWordCount())
	}
	if len(sources) == 0 {
		score -= groundingPenalty
		if score < 0 {
			score = 0
		}
	}

	sourceIDs := make([]string, 0, len(sources))
	for _, article := range sources {
		sourceIDs = append(sourceIDs, article.ID)
	}

	return &database.GeneratedContent{
		ID:               uuid.NewString(),
		Title:            title,
		Body:             body,
		Summary:          summary,
		Language:         request.Language,
		Tone:             request.Tone,
		WordCount:        len(strings.Fields(body)),
		SEOScore:         score,
		Keywords:         keywords,
		Tags:             tags,
		SourceArticleIDs: sourceIDs,
		ProviderKeyID:    result.KeyID,
		IsPublished:      false,
	}, nil
}

// splitTitle treats the first non-empty line as the title, stripped of
// markdown heading markers, and the rest as the body.
func splitTitle(text string) (string, string) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 {
		return "", ""
	}

	title := strings.TrimSpace(strings.TrimLeft(lines[0], "# "))
	body := strings.TrimSpace(strings.Join(lines[1:], "\n"))
	return title, body
}

func mergeTopicKeywords(keywords []string, topics []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	for _, keyword := range keywords {
		seen[keyword] = struct{}{}
	}
	for _, topic := range topics {
		lowered := strings.ToLower(strings.TrimSpace(topic))
		if lowered == "" {
			continue
		}
		if _, ok := seen[lowered]; !ok {
			keywords = append(keywords, lowered)
			seen[lowered] = struct{}{}
		}
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
