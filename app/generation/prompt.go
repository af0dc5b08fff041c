package generation

import (
	"fmt"
	"strings"

	"github.com/CyberPrince-glitch/TechPlus/app/database"
	"github.com/CyberPrince-glitch/TechPlus/app/llm"
)

const systemMessage = "You are a professional tech news writer who creates " +
	"engaging, SEO-optimized, human-like articles. Write in a conversational " +
	"yet professional tone. Focus on trending topics, insights, and practical " +
	"implications."

var languageInstructions = map[string]string{
	"english": "Write the article in English.",
	"hindi":   "Write the article in Hindi.",
	"bangla":  "Write the article in Bangla.",
}

// ComposePrompt embeds the topics, tone, target length band, and condensed
// source-article summaries into one completion prompt. The first line of the
// response is expected to be the title.
func ComposePrompt(request Request, sources []database.Article) llm.Prompt {
	var b strings.Builder

	if len(sources) > 0 {
		fmt.Fprintf(&b, "Based on the following %d tech news articles, ", len(sources))
	} else {
		b.WriteString("Drawing on your knowledge of current technology trends, ")
	}
	b.WriteString("create a comprehensive, engaging, and SEO-optimized article that:\n\n")
	fmt.Fprintf(&b, "1. Covers these topics: %s\n", strings.Join(request.Topics, ", "))
	b.WriteString("2. Synthesizes the key information and trends\n")
	b.WriteString("3. Provides unique insights and analysis\n")
	fmt.Fprintf(&b, "4. Uses a %s tone that sounds completely human-written\n", request.Tone)
	fmt.Fprintf(&b, "5. Is approximately %d words\n", request.TargetWordCount())
	b.WriteString("6. Includes relevant keywords naturally\n")
	b.WriteString("7. Starts with a compelling title on the first line\n")

	if instruction, ok := languageInstructions[request.Language]; ok {
		fmt.Fprintf(&b, "8. %s\n", instruction)
	}

	if len(sources) > 0 {
		b.WriteString("\nSource Articles:\n")
		b.WriteString(condenseSources(sources))
		b.WriteString("\n\nWrite an article that combines these stories into a " +
			"cohesive, insightful piece that would rank well on search engines " +
			"and engage readers.")
	}

	return llm.Prompt{
		System: systemMessage,
		User:   b.String(),
	}
}

func condenseSources(sources []database.Article) string {
	summaries := make([]string, 0, len(sources))
	for _, article := range sources {
		summaries = append(summaries, fmt.Sprintf("Title: %s\nSummary: %s\nSource: %s",
			article.Title, article.Summary, article.Source))
	}
	return strings.Join(summaries, "\n\n---\n\n")
}
