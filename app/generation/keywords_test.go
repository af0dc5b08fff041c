package generation

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractKeywordsFrequencyOrder(t *testing.T) {
	text := "cloud cloud cloud kubernetes kubernetes docker"

	keywords := ExtractKeywords(text)

	expected := []string{"cloud", "kubernetes", "docker"}
	if !reflect.DeepEqual(keywords, expected) {
		t.Errorf("Expected %v, got %v", expected, keywords)
	}
}

func TestExtractKeywordsSkipsStopwords(t *testing.T) {
	text := "this startup will have more innovation than that startup"

	keywords := ExtractKeywords(text)

	for _, keyword := range keywords {
		if _, isStopword := stopwords[keyword]; isStopword {
			t.Errorf("Stopword '%s' leaked into keywords", keyword)
		}
	}
	if keywords[0] != "startup" {
		t.Errorf("Expected 'startup' as top keyword, got '%s'", keywords[0])
	}
}

func TestExtractKeywordsSkipsShortWords(t *testing.T) {
	keywords := ExtractKeywords("go is a fun api but golang tooling wins")

	for _, keyword := range keywords {
		if len(keyword) < 4 {
			t.Errorf("Short word '%s' leaked into keywords", keyword)
		}
	}
}

func TestExtractKeywordsDeterministicTiebreak(t *testing.T) {
	text := "zebra alpha zebra alpha"

	first := ExtractKeywords(text)
	for i := 0; i < 10; i++ {
		if got := ExtractKeywords(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Extraction not deterministic: %v vs %v", first, got)
		}
	}

	// Equal frequency breaks alphabetically
	if !reflect.DeepEqual(first, []string{"alpha", "zebra"}) {
		t.Errorf("Expected alphabetical tiebreak, got %v", first)
	}
}

func TestExtractKeywordsCap(t *testing.T) {
	var b strings.Builder
	for _, word := range []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliet", "kilo", "lima", "mike", "november",
		"oscar", "papa", "quebec", "romeo",
	} {
		b.WriteString(word)
		b.WriteString(" ")
	}

	keywords := ExtractKeywords(b.String())
	if len(keywords) != maxKeywords {
		t.Errorf("Expected %d keywords, got %d", maxKeywords, len(keywords))
	}
}

func TestExtractKeywordsEmpty(t *testing.T) {
	if keywords := ExtractKeywords(""); len(keywords) != 0 {
		t.Errorf("Expected no keywords, got %v", keywords)
	}
}

func TestExtractTags(t *testing.T) {
	text := "The startup uses machine learning on cloud infrastructure"

	tags := ExtractTags(text)

	expectedPresent := []string{"machine", "learning", "cloud", "startup"}
	for _, expected := range expectedPresent {
		found := false
		for _, tag := range tags {
			if tag == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected tag '%s' in %v", expected, tags)
		}
	}
}

func TestExtractTagsCap(t *testing.T) {
	text := strings.Join(tagVocabulary, " ")

	tags := ExtractTags(text)
	if len(tags) != maxTags {
		t.Errorf("Expected %d tags, got %d", maxTags, len(tags))
	}
}

func TestExtractTagsNoMatches(t *testing.T) {
	if tags := ExtractTags("completely unrelated prose"); len(tags) != 0 {
		t.Errorf("Expected no tags, got %v", tags)
	}
}
