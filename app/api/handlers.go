package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CyberPrince-glitch/TechPlus/app/config"
	"github.com/CyberPrince-glitch/TechPlus/app/database"
	"github.com/CyberPrince-glitch/TechPlus/app/generation"
	"github.com/CyberPrince-glitch/TechPlus/app/llm"
	"github.com/CyberPrince-glitch/TechPlus/app/quota"
	"github.com/CyberPrince-glitch/TechPlus/app/tasks"
)

const (
	defaultArticleCount = 5
	defaultSearchLimit  = 20
	defaultListLimit    = 50
	defaultDailyQuota   = 100
	defaultKeyPriority  = 1
)

var defaultModels = map[string]string{
	llm.ProviderGemini:    "gemini-2.0-flash",
	llm.ProviderOpenAI:    "gpt-4o-mini",
	llm.ProviderAnthropic: "claude-3-5-haiku-latest",
}

func NewHandler(feedRepo database.FeedRepository, articleRepo database.ArticleRepository,
	keyRepo database.KeyRepository, contentRepo database.ContentRepository,
	pipeline PipelineInterface, keyTester KeyTesterInterface,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
		keyRepo:     keyRepo,
		contentRepo: contentRepo,
		pipeline:    pipeline,
		keyTester:   keyTester,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(c.Request.Context()); err == nil {
		health["feeds"] = feedCount
	}
	if articleCount, err := h.articleRepo.GetArticleCount(c.Request.Context()); err == nil {
		health["articles"] = articleCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	request := generation.Request{
		Topics:       req.Topics,
		Language:     req.Language,
		Tone:         req.Tone,
		Length:       req.Length,
		ArticleCount: req.ArticleCount,
		IncludeSEO:   true,
	}
	if request.ArticleCount == 0 {
		request.ArticleCount = defaultArticleCount
	}
	if req.IncludeSEO != nil {
		request.IncludeSEO = *req.IncludeSEO
	}

	content, err := h.pipeline.Run(c.Request.Context(), request)
	if err != nil {
		h.renderGenerateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": contentView(*content, true)})
}

// renderGenerateError maps pipeline failures onto HTTP statuses. Provider
// exhaustion is reported as 503 with one reason per attempted key so the
// caller can tell quota starvation from provider outages.
func (h *Handler) renderGenerateError(c *gin.Context, err error) {
	var pipelineErr *generation.PipelineError
	if errors.As(err, &pipelineErr) && pipelineErr.Stage == "validate" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid generation request", "message": pipelineErr.Err.Error()})
		return
	}

	if errors.Is(err, generation.ErrGenerationUnavailable) {
		var exhausted *llm.ExhaustedError
		if errors.As(err, &exhausted) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":    exhaustedReason(exhausted),
				"attempts": exhausted.Attempts,
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Content generation unavailable"})
		return
	}

	slog.Error("Content generation failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Content generation failed"})
}

func exhaustedReason(exhausted *llm.ExhaustedError) string {
	if len(exhausted.Attempts) == 0 {
		return "No active provider keys configured"
	}

	quotaDenied := 0
	for _, attempt := range exhausted.Attempts {
		if attempt.Reason == quota.ErrQuotaExceeded.Error() {
			quotaDenied++
		}
	}
	if quotaDenied == len(exhausted.Attempts) {
		return "Daily quota exhausted for all provider keys"
	}
	return "All provider keys failed"
}

func (h *Handler) CollectArticles(c *gin.Context) {
	enqueued, err := h.scheduler.EnqueueCollectAll()
	if err != nil {
		slog.Error("Failed to schedule feed collection", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule collection"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "collection scheduled",
		"feeds":  enqueued,
	})
}

func (h *Handler) ListArticles(c *gin.Context) {
	limit := queryInt(c, "limit", defaultListLimit)
	category := c.Query("category")

	articles, err := h.articleRepo.GetArticles(c.Request.Context(), category, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]ArticleView, 0, len(articles))
	for _, article := range articles {
		views = append(views, articleView(article))
	}

	c.JSON(http.StatusOK, gin.H{"articles": views, "total": len(views)})
}

func (h *Handler) ListContent(c *gin.Context) {
	limit := queryInt(c, "limit", defaultListLimit)
	language := c.Query("language")

	items, err := h.contentRepo.ListContent(c.Request.Context(), language, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_content", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]ContentView, 0, len(items))
	for _, item := range items {
		views = append(views, contentView(item, false))
	}

	c.JSON(http.StatusOK, gin.H{"content": views, "total": len(views)})
}

func (h *Handler) GetContent(c *gin.Context) {
	id := c.Param("id")

	content, err := h.contentRepo.GetContent(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_content", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if content == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": contentView(*content, true)})
}

func (h *Handler) PublishContent(c *gin.Context) {
	id := c.Param("id")

	updated, err := h.contentRepo.SetPublished(c.Request.Context(), id, true)
	if err != nil {
		slog.Error("Database error", "operation", "publish_content", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "is_published": true})
}

func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter 'q'"})
		return
	}

	searchType := c.DefaultQuery("type", "all")
	limit := queryInt(c, "limit", defaultSearchLimit)

	response := gin.H{"query": query}

	if searchType == "articles" || searchType == "all" {
		articles, err := h.articleRepo.SearchArticles(c.Request.Context(), []string{query}, limit)
		if err != nil {
			slog.Error("Database error", "operation", "search_articles", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		views := make([]ArticleView, 0, len(articles))
		for _, article := range articles {
			views = append(views, articleView(article))
		}
		response["articles"] = views
	}

	if searchType == "content" || searchType == "all" {
		items, err := h.contentRepo.SearchContent(c.Request.Context(), query, limit)
		if err != nil {
			slog.Error("Database error", "operation", "search_content", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		views := make([]ContentView, 0, len(items))
		for _, item := range items {
			views = append(views, contentView(item, false))
		}
		response["content"] = views
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetAnalytics(c *gin.Context) {
	ctx := c.Request.Context()

	articleCount, err := h.articleRepo.GetArticleCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	feedCount, err := h.feedRepo.GetFeedCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	totalContent, publishedContent, err := h.contentRepo.GetContentStats(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	keys, err := h.keyRepo.GetAllKeys(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	activeKeys := 0
	usedToday := 0
	for _, key := range keys {
		if key.IsActive {
			activeKeys++
		}
		usedToday += key.CurrentUsage
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": gin.H{"total": articleCount, "feeds": feedCount},
		"content":  gin.H{"total": totalContent, "published": publishedContent},
		"provider_keys": gin.H{
			"total":      len(keys),
			"active":     activeKeys,
			"used_today": usedToday,
		},
	})
}

func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.feedRepo.GetAllFeeds(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]FeedView, 0, len(feeds))
	for _, f := range feeds {
		views = append(views, FeedView{
			ID:            f.ID,
			Title:         f.Title,
			URL:           f.URL,
			Category:      f.Category,
			Language:      f.Language,
			IsActive:      f.IsActive,
			LastFetchedAt: f.LastFetchedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"feeds": views, "total": len(views)})
}

func (h *Handler) CreateFeed(c *gin.Context) {
	var req CreateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	if req.Category == "" {
		req.Category = "technology"
	}
	if req.Language == "" {
		req.Language = "english"
	}

	id, err := h.feedRepo.UpsertFeed(c.Request.Context(), req.Title, req.URL, req.Category, req.Language)
	if err != nil {
		slog.Error("Database error", "operation", "create_feed", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "title": req.Title, "url": req.URL})
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.feedRepo.DeleteFeed(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_feed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *Handler) InitializeFeeds(c *gin.Context) {
	created := 0
	for _, source := range config.DefaultSources() {
		_, err := h.feedRepo.UpsertFeed(c.Request.Context(), source.Title, source.URL, source.Category, source.Language)
		if err != nil {
			slog.Error("Database error", "operation", "initialize_feeds", "url", source.URL, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		created++
	}

	c.JSON(http.StatusOK, gin.H{"status": "feeds initialized", "total": created})
}

func (h *Handler) CreateKey(c *gin.Context) {
	var req CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	provider := strings.ToLower(req.Provider)
	if !llm.KnownProvider(provider) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider", "message": "Supported providers: gemini, openai, anthropic"})
		return
	}

	model := req.Model
	if model == "" {
		model = defaultModels[provider]
	}
	maxRequests := req.MaxRequestsPerDay
	if maxRequests <= 0 {
		maxRequests = defaultDailyQuota
	}
	priority := req.Priority
	if priority <= 0 {
		priority = defaultKeyPriority
	}

	key := database.ProviderKey{
		ID:                uuid.NewString(),
		Provider:          provider,
		Model:             model,
		APIKey:            req.APIKey,
		Priority:          priority,
		MaxRequestsPerDay: maxRequests,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}

	if err := h.keyRepo.InsertKey(c.Request.Context(), key); err != nil {
		slog.Error("Database error", "operation", "create_key", "provider", provider, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": keyView(key)})
}

func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.keyRepo.GetAllKeys(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_keys", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]KeyView, 0, len(keys))
	for _, key := range keys {
		views = append(views, keyView(key))
	}

	c.JSON(http.StatusOK, gin.H{"keys": views, "total": len(views)})
}

func (h *Handler) UpdateKey(c *gin.Context) {
	id := c.Param("id")

	var req UpdateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	updates := database.KeyUpdates{
		Model:             req.Model,
		Priority:          req.Priority,
		MaxRequestsPerDay: req.MaxRequestsPerDay,
		IsActive:          req.IsActive,
	}

	updated, err := h.keyRepo.UpdateKey(c.Request.Context(), id, updates)
	if err != nil {
		slog.Error("Database error", "operation", "update_key", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider key not found"})
		return
	}

	key, err := h.keyRepo.GetKey(c.Request.Context(), id)
	if err != nil || key == nil {
		c.JSON(http.StatusOK, gin.H{"id": id, "updated": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": keyView(*key)})
}

func (h *Handler) DeleteKey(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.keyRepo.DeleteKey(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_key", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider key not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *Handler) TestKey(c *gin.Context) {
	id := c.Param("id")

	key, err := h.keyRepo.GetKey(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "test_key", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if key == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider key not found"})
		return
	}

	response, err := h.keyTester.TestKey(c.Request.Context(), *key)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"id":      id,
			"ok":      false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"ok":       true,
		"response": response,
	})
}

// maskKey hides the middle of a credential, keeping just enough of each end
// to identify it in a list.
func maskKey(key string) string {
	if len(key) < 12 {
		return "***"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

func keyView(key database.ProviderKey) KeyView {
	return KeyView{
		ID:                key.ID,
		Provider:          key.Provider,
		Model:             key.Model,
		APIKey:            maskKey(key.APIKey),
		Priority:          key.Priority,
		MaxRequestsPerDay: key.MaxRequestsPerDay,
		CurrentUsage:      key.CurrentUsage,
		IsActive:          key.IsActive,
		LastTestedAt:      key.LastTestedAt,
		LastTestOK:        key.LastTestOK,
		LastUsedAt:        key.LastUsedAt,
		CreatedAt:         key.CreatedAt,
	}
}

func articleView(article database.Article) ArticleView {
	return ArticleView{
		ID:          article.ID,
		Title:       article.Title,
		Summary:     article.Summary,
		URL:         article.URL,
		Source:      article.Source,
		Category:    article.Category,
		Language:    article.Language,
		PublishedAt: article.PublishedAt,
		ImageURL:    article.ImageURL,
	}
}

func contentView(content database.GeneratedContent, includeBody bool) ContentView {
	view := ContentView{
		ID:          content.ID,
		Title:       content.Title,
		Summary:     content.Summary,
		Language:    content.Language,
		Tone:        content.Tone,
		WordCount:   content.WordCount,
		SEOScore:    content.SEOScore,
		Keywords:    content.Keywords,
		Tags:        content.Tags,
		SourceCount: len(content.SourceArticleIDs),
		IsPublished: content.IsPublished,
		CreatedAt:   content.CreatedAt,
	}
	if includeBody {
		view.Body = content.Body
	}
	return view
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
