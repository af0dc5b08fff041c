package config

// DefaultSources returns the built-in source list used when no feed
// definition files are present.
func DefaultSources() []FeedSource {
	return []FeedSource{
		// Tech news
		{Title: "TechCrunch", URL: "https://techcrunch.com/feed/", Category: "technology", Language: "english"},
		{Title: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index", Category: "technology", Language: "english"},
		{Title: "Wired", URL: "https://www.wired.com/feed/rss", Category: "technology", Language: "english"},
		{Title: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Category: "technology", Language: "english"},
		{Title: "Engadget", URL: "https://www.engadget.com/rss.xml", Category: "technology", Language: "english"},

		// AI and machine learning
		{Title: "MIT Technology Review AI", URL: "https://www.technologyreview.com/topic/artificial-intelligence/feed/", Category: "ai", Language: "english"},
		{Title: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml", Category: "ai", Language: "english"},
		{Title: "Google AI Blog", URL: "https://ai.googleblog.com/feeds/posts/default", Category: "ai", Language: "english"},
		{Title: "DeepMind Blog", URL: "https://deepmind.com/blog/feed/basic/", Category: "ai", Language: "english"},
		{Title: "Towards Data Science", URL: "https://towardsdatascience.com/feed", Category: "ai", Language: "english"},

		// Programming and development
		{Title: "GitHub Blog", URL: "https://github.blog/feed/", Category: "programming", Language: "english"},
		{Title: "Stack Overflow Blog", URL: "https://stackoverflow.blog/feed/", Category: "programming", Language: "english"},
		{Title: "Dev.to", URL: "https://dev.to/feed", Category: "programming", Language: "english"},
		{Title: "HackerNews", URL: "https://hnrss.org/frontpage", Category: "programming", Language: "english"},

		// Startups and business
		{Title: "Y Combinator Blog", URL: "https://blog.ycombinator.com/feed", Category: "startup", Language: "english"},
		{Title: "Entrepreneur", URL: "https://www.entrepreneur.com/latest.rss", Category: "business", Language: "english"},
		{Title: "Fast Company", URL: "https://www.fastcompany.com/feed", Category: "business", Language: "english"},
		{Title: "Inc42", URL: "https://inc42.com/feed/", Category: "startup", Language: "english"},
		{Title: "YourStory", URL: "https://yourstory.com/feed", Category: "startup", Language: "english"},
		{Title: "The Ken", URL: "https://the-ken.com/feed/", Category: "business", Language: "english"},
	}
}
