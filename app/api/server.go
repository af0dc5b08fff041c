package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)

	// Read endpoints are public
	r.GET("/api/articles", handler.ListArticles)
	r.GET("/api/content", handler.ListContent)
	r.GET("/api/content/:id", handler.GetContent)
	r.GET("/api/feeds", handler.ListFeeds)
	r.GET("/api/search", handler.Search)
	r.GET("/api/analytics", handler.GetAnalytics)

	// Mutating endpoints require authentication
	if apiAccessKey != "" {
		auth := r.Group("/api")
		auth.Use(authMiddleware(apiAccessKey))
		{
			auth.POST("/generate", handler.Generate)
			auth.POST("/articles/collect", handler.CollectArticles)
			auth.POST("/content/:id/publish", handler.PublishContent)

			auth.POST("/feeds", handler.CreateFeed)
			auth.DELETE("/feeds/:id", handler.DeleteFeed)
			auth.POST("/feeds/initialize", handler.InitializeFeeds)

			auth.POST("/admin/keys", handler.CreateKey)
			auth.GET("/admin/keys", handler.ListKeys)
			auth.PATCH("/admin/keys/:id", handler.UpdateKey)
			auth.DELETE("/admin/keys/:id", handler.DeleteKey)
			auth.POST("/admin/keys/:id/test", handler.TestKey)
		}
		log.Printf("API endpoints enabled with authentication")
	} else {
		log.Printf("Mutating API endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health":    "/health",
			"articles":  "/api/articles",
			"content":   "/api/content",
			"feeds":     "/api/feeds",
			"search":    "/api/search?q=<query>",
			"analytics": "/api/analytics",
		}

		if apiAccessKey != "" {
			endpoints["generate"] = "/api/generate (POST, requires X-API-Key header)"
			endpoints["collect"] = "/api/articles/collect (POST, requires X-API-Key header)"
			endpoints["keys"] = "/api/admin/keys (requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "TechPlus",
			"description": "Tech news aggregation and AI content generation platform",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
