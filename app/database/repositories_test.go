package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func newArticle(title string) NewArticle {
	return NewArticle{
		Title:       title,
		Summary:     "summary for " + title,
		Content:     "content for " + title,
		URL:         "https://example.com/" + title,
		Source:      "Test Source",
		Category:    "technology",
		Language:    "english",
		PublishedAt: time.Now().UTC(),
		Fingerprint: title + "-fingerprint",
	}
}

func TestFeedUpsert(t *testing.T) {
	db := setupDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	id, err := repo.UpsertFeed(ctx, "TechCrunch", "https://techcrunch.com/feed/", "technology", "english")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("Expected non-empty feed id")
	}

	// Same URL upserts instead of duplicating
	again, err := repo.UpsertFeed(ctx, "TechCrunch Renamed", "https://techcrunch.com/feed/", "news", "english")
	if err != nil {
		t.Fatal(err)
	}
	if again != id {
		t.Errorf("Expected same id on upsert, got '%s' and '%s'", id, again)
	}

	feeds, err := repo.GetAllFeeds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(feeds) != 1 {
		t.Fatalf("Expected 1 feed, got %d", len(feeds))
	}
	if feeds[0].Title != "TechCrunch Renamed" {
		t.Errorf("Expected updated title, got '%s'", feeds[0].Title)
	}
	if feeds[0].Category != "news" {
		t.Errorf("Expected updated category, got '%s'", feeds[0].Category)
	}
}

func TestFeedUpdateLastFetched(t *testing.T) {
	db := setupDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	id, err := repo.UpsertFeed(ctx, "Wired", "https://www.wired.com/feed/rss", "technology", "english")
	if err != nil {
		t.Fatal(err)
	}

	fetchedAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastFetched(ctx, id, fetchedAt); err != nil {
		t.Fatal(err)
	}

	feed, err := repo.GetFeed(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if feed.LastFetchedAt == nil {
		t.Fatal("Expected last fetched time to be set")
	}
	if !feed.LastFetchedAt.Equal(fetchedAt) {
		t.Errorf("Expected %v, got %v", fetchedAt, *feed.LastFetchedAt)
	}
}

func TestFeedDelete(t *testing.T) {
	db := setupDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	id, err := repo.UpsertFeed(ctx, "Engadget", "https://www.engadget.com/rss.xml", "technology", "english")
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := repo.DeleteFeed(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Error("Expected feed deleted")
	}

	deleted, err = repo.DeleteFeed(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Error("Expected second delete to report not found")
	}
}

func TestInsertArticleFingerprintConflict(t *testing.T) {
	db := setupDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	inserted, err := repo.InsertArticle(ctx, "feed-1", newArticle("gpt5"))
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Fatal("Expected first insert to succeed")
	}

	// Same fingerprint, different URL: suppressed silently
	duplicate := newArticle("gpt5")
	duplicate.URL = "https://other.example.com/gpt5"
	inserted, err = repo.InsertArticle(ctx, "feed-2", duplicate)
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("Expected duplicate fingerprint to be suppressed")
	}

	count, err := repo.GetArticleCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 article, got %d", count)
	}
}

func TestGetRecentTitlesWindow(t *testing.T) {
	db := setupDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	if _, err := repo.InsertArticle(ctx, "feed-1", newArticle("fresh article")); err != nil {
		t.Fatal(err)
	}

	titles, err := repo.GetRecentTitles(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 1 || titles[0] != "fresh article" {
		t.Errorf("Expected ['fresh article'], got %v", titles)
	}

	// A future lower bound excludes everything
	titles, err = repo.GetRecentTitles(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 0 {
		t.Errorf("Expected no titles, got %v", titles)
	}
}

func TestSearchArticles(t *testing.T) {
	db := setupDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	for _, title := range []string{"Kubernetes scales up", "Python 4 roadmap", "Cloud costs drop"} {
		if _, err := repo.InsertArticle(ctx, "feed-1", newArticle(title)); err != nil {
			t.Fatal(err)
		}
	}

	results, err := repo.SearchArticles(ctx, []string{"kubernetes"}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Kubernetes scales up" {
		t.Errorf("Unexpected result title '%s'", results[0].Title)
	}

	// Multiple topics OR together
	results, err = repo.SearchArticles(ctx, []string{"kubernetes", "python"}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}

	// Limit applies
	results, err = repo.SearchArticles(ctx, []string{"kubernetes", "python", "cloud"}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("Expected limit of 2, got %d", len(results))
	}
}

func TestContentRoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	content := GeneratedContent{
		ID:               "content-1",
		Title:            "AI in 2026",
		Body:             "Long body text",
		Summary:          "Short summary",
		Language:         "english",
		Tone:             "professional",
		WordCount:        1200,
		SEOScore:         87,
		Keywords:         []string{"artificial", "intelligence"},
		Tags:             []string{"ai", "tech"},
		SourceArticleIDs: []string{"a-1", "a-2"},
		ProviderKeyID:    "key-1",
	}

	if err := repo.InsertContent(ctx, content); err != nil {
		t.Fatal(err)
	}

	loaded, err := repo.GetContent(ctx, "content-1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("Expected content to be found")
	}

	if loaded.Title != content.Title {
		t.Errorf("Expected title '%s', got '%s'", content.Title, loaded.Title)
	}
	if len(loaded.Keywords) != 2 || loaded.Keywords[0] != "artificial" {
		t.Errorf("Unexpected keywords: %v", loaded.Keywords)
	}
	if len(loaded.Tags) != 2 {
		t.Errorf("Unexpected tags: %v", loaded.Tags)
	}
	if len(loaded.SourceArticleIDs) != 2 {
		t.Errorf("Unexpected source IDs: %v", loaded.SourceArticleIDs)
	}
	if loaded.IsPublished {
		t.Error("Expected content to start unpublished")
	}
}

func TestContentGetMissing(t *testing.T) {
	db := setupDB(t)
	repo := NewContentRepository(db)

	loaded, err := repo.GetContent(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing content")
	}
}

func TestContentPublishAndStats(t *testing.T) {
	db := setupDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	for _, id := range []string{"c-1", "c-2"} {
		err := repo.InsertContent(ctx, GeneratedContent{
			ID: id, Title: "Title " + id, Body: "Body", Summary: "Summary",
			Language: "english", Tone: "casual", WordCount: 500, SEOScore: 70,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	updated, err := repo.SetPublished(ctx, "c-1", true)
	if err != nil {
		t.Fatal(err)
	}
	if !updated {
		t.Error("Expected publish to update the record")
	}

	updated, err = repo.SetPublished(ctx, "missing", true)
	if err != nil {
		t.Fatal(err)
	}
	if updated {
		t.Error("Expected publish of missing id to report not found")
	}

	total, published, err := repo.GetContentStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("Expected 2 total, got %d", total)
	}
	if published != 1 {
		t.Errorf("Expected 1 published, got %d", published)
	}
}

func TestKeyUpdatePartial(t *testing.T) {
	db := setupDB(t)
	repo := NewKeyRepository(db)
	ctx := context.Background()

	err := repo.InsertKey(ctx, ProviderKey{
		ID: "key-1", Provider: "openai", Model: "gpt-4o-mini",
		APIKey: "sk-test", Priority: 2, MaxRequestsPerDay: 50, IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	inactive := false
	priority := 1
	updated, err := repo.UpdateKey(ctx, "key-1", KeyUpdates{Priority: &priority, IsActive: &inactive})
	if err != nil {
		t.Fatal(err)
	}
	if !updated {
		t.Fatal("Expected update to apply")
	}

	key, err := repo.GetKey(ctx, "key-1")
	if err != nil {
		t.Fatal(err)
	}
	if key.Priority != 1 {
		t.Errorf("Expected priority 1, got %d", key.Priority)
	}
	if key.IsActive {
		t.Error("Expected key deactivated")
	}
	// Untouched fields keep their values
	if key.Model != "gpt-4o-mini" {
		t.Errorf("Expected model unchanged, got '%s'", key.Model)
	}
	if key.MaxRequestsPerDay != 50 {
		t.Errorf("Expected ceiling unchanged, got %d", key.MaxRequestsPerDay)
	}
}

func TestCandidateKeyOrdering(t *testing.T) {
	db := setupDB(t)
	repo := NewKeyRepository(db)
	ctx := context.Background()

	keys := []ProviderKey{
		{ID: "low-priority", Provider: "gemini", Model: "m", APIKey: "k", Priority: 2, MaxRequestsPerDay: 10, IsActive: true},
		{ID: "busy", Provider: "gemini", Model: "m", APIKey: "k", Priority: 1, MaxRequestsPerDay: 10, CurrentUsage: 5, IsActive: true},
		{ID: "idle", Provider: "gemini", Model: "m", APIKey: "k", Priority: 1, MaxRequestsPerDay: 10, IsActive: true},
		{ID: "disabled", Provider: "gemini", Model: "m", APIKey: "k", Priority: 1, MaxRequestsPerDay: 10, IsActive: false},
	}
	for _, key := range keys {
		if err := repo.InsertKey(ctx, key); err != nil {
			t.Fatal(err)
		}
	}

	candidates, err := repo.GetCandidateKeys(ctx)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"idle", "busy", "low-priority"}
	if len(candidates) != len(expected) {
		t.Fatalf("Expected %d candidates, got %d", len(expected), len(candidates))
	}
	for i, id := range expected {
		if candidates[i].ID != id {
			t.Errorf("Expected candidate %d to be '%s', got '%s'", i, id, candidates[i].ID)
		}
	}
}
