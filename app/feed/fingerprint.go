package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// NormalizeTitle lowercases a title, strips punctuation and collapses
// whitespace so syndicated variants of the same headline normalize to the
// same string.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Fingerprint hashes the normalized title into the article's dedup identity.
func Fingerprint(title string) string {
	hash := sha256.Sum256([]byte(NormalizeTitle(title)))
	return hex.EncodeToString(hash[:])
}

// TitleSimilarity computes the Jaccard similarity of two titles' token sets.
func TitleSimilarity(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersection := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection

	return float64(intersection) / float64(union)
}

func tokenSet(title string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(NormalizeTitle(title)) {
		tokens[token] = struct{}{}
	}
	return tokens
}
