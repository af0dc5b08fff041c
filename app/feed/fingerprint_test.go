package feed

import (
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Hello World", "hello world"},
		{"punctuation stripped", "OpenAI Releases GPT-5!!!", "openai releases gpt5"},
		{"whitespace collapsed", "  too   many\tspaces  ", "too many spaces"},
		{"digits kept", "Top 10 Languages of 2026", "top 10 languages of 2026"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeTitle(tt.input)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("OpenAI releases GPT-5")
	b := Fingerprint("OpenAI Releases GPT-5!!!")

	if a != b {
		t.Errorf("Expected identical fingerprints for normalized-equal titles, got '%s' and '%s'", a, b)
	}

	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
}

func TestFingerprintDistinct(t *testing.T) {
	a := Fingerprint("OpenAI releases GPT-5")
	b := Fingerprint("Google releases Gemini 3")

	if a == b {
		t.Error("Expected distinct fingerprints for different titles")
	}
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{"identical", "apple releases new chip", "apple releases new chip", 1.0},
		{"disjoint", "apple releases new chip", "google updates search index", 0.0},
		{"empty side", "", "apple releases new chip", 0.0},
		{"half overlap", "alpha beta", "alpha gamma delta", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TitleSimilarity(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("Expected similarity %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestTitleSimilarityNearDuplicate(t *testing.T) {
	a := "Apple unveils the new M5 chip at its October event"
	b := "Apple unveils the new M5 chip at October event"

	if sim := TitleSimilarity(a, b); sim < 0.8 {
		t.Errorf("Expected rephrased headline to score at least 0.8, got %v", sim)
	}
}
