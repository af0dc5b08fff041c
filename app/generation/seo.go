package generation

import (
	"strings"
)

// SEO scoring weights. The components sum to 100; the result is clamped to
// [0,100] regardless.
const (
	weightTitleKeyword   = 25
	weightKeywordDensity = 25
	weightBodyLength     = 30
	weightMetaPresence   = 20

	densityMin = 0.01
	densityMax = 0.03
)

// SEOScore computes a deterministic score for the generated article.
// Components: target keyword present in the title, keyword density in the
// body within the acceptable band, body length relative to the target band,
// and presence of meta fields (summary, tags).
func SEOScore(title, body, summary string, keywords, tags []string, targetWords int) int {
	score := 0

	loweredTitle := strings.ToLower(title)
	for _, keyword := range keywords {
		if strings.Contains(loweredTitle, strings.ToLower(keyword)) {
			score += weightTitleKeyword
			break
		}
	}

	words := strings.Fields(strings.ToLower(body))
	if len(words) > 0 && len(keywords) > 0 {
		density := keywordDensity(words, keywords)
		switch {
		case density >= densityMin && density <= densityMax:
			score += weightKeywordDensity
		case density > 0:
			score += weightKeywordDensity / 2
		}
	}

	score += lengthScore(len(words), targetWords)

	if strings.TrimSpace(summary) != "" {
		score += weightMetaPresence / 2
	}
	if len(tags) > 0 {
		score += weightMetaPresence / 2
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func keywordDensity(words []string, keywords []string) float64 {
	keywordSet := make(map[string]struct{}, len(keywords))
	for _, keyword := range keywords {
		keywordSet[strings.ToLower(keyword)] = struct{}{}
	}

	hits := 0
	for _, word := range words {
		if _, ok := keywordSet[strings.Trim(word, ".,!?;:\"'()")]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// lengthScore grants full weight within ±25% of the target band and scales
// down linearly outside it.
func lengthScore(wordCount, targetWords int) int {
	if targetWords <= 0 || wordCount == 0 {
		return 0
	}

	ratio := float64(wordCount) / float64(targetWords)
	switch {
	case ratio >= 0.75 && ratio <= 1.25:
		return weightBodyLength
	case ratio >= 0.5 && ratio <= 1.5:
		return weightBodyLength / 2
	case ratio >= 0.25:
		return weightBodyLength / 4
	default:
		return 0
	}
}
