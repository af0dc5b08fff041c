package generation

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxKeywords = 15
	maxTags     = 10
)

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

// stopwords excluded from frequency-based keyword extraction.
var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "have": {}, "will": {}, "from": {},
	"they": {}, "been": {}, "were": {}, "said": {}, "each": {}, "which": {},
	"their": {}, "time": {}, "would": {}, "there": {}, "could": {}, "more": {},
	"than": {}, "into": {}, "very": {}, "what": {}, "know": {}, "just": {},
	"first": {}, "also": {}, "after": {}, "back": {}, "other": {}, "many": {},
	"them": {}, "these": {}, "some": {}, "like": {}, "even": {}, "most": {},
	"made": {}, "only": {}, "over": {}, "think": {}, "where": {}, "being": {},
	"through": {}, "much": {}, "before": {}, "right": {}, "should": {},
	"still": {}, "such": {}, "between": {}, "both": {}, "under": {},
	"never": {}, "while": {}, "another": {}, "without": {}, "again": {},
	"come": {}, "make": {}, "then": {}, "about": {}, "when": {}, "your": {},
}

// tagVocabulary is the recognized category vocabulary matched against
// extracted keywords and text to derive tags.
var tagVocabulary = []string{
	"ai", "artificial", "intelligence", "machine", "learning", "technology",
	"tech", "software", "hardware", "cloud", "data", "digital", "mobile",
	"app", "programming", "development", "startup", "innovation",
	"blockchain", "crypto", "cybersecurity", "gaming",
}

// ExtractKeywords returns the most frequent non-stopword terms in the text,
// most frequent first, capped at maxKeywords. Ties break alphabetically so
// extraction is deterministic.
func ExtractKeywords(text string) []string {
	frequencies := make(map[string]int)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := stopwords[word]; skip {
			continue
		}
		frequencies[word]++
	}

	keywords := make([]string, 0, len(frequencies))
	for word := range frequencies {
		keywords = append(keywords, word)
	}
	sort.Slice(keywords, func(a, b int) bool {
		if frequencies[keywords[a]] != frequencies[keywords[b]] {
			return frequencies[keywords[a]] > frequencies[keywords[b]]
		}
		return keywords[a] < keywords[b]
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// ExtractTags returns the subset of the recognized vocabulary present in the
// text, capped at maxTags.
func ExtractTags(text string) []string {
	lowered := strings.ToLower(text)
	var tags []string
	for _, term := range tagVocabulary {
		if strings.Contains(lowered, term) {
			tags = append(tags, term)
		}
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
