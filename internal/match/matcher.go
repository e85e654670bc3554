package match

import (
	"regexp"
	"strings"
)

// Matcher provides deterministic text similarity for catalogue matching.
// Tokenization filters stop words and applies light stemming so that tag
// variants ("licensing"/"licensed") still match.
type Matcher struct {
	stopWords map[string]bool
}

// NewMatcher creates a matcher with common English stop words.
func NewMatcher() *Matcher {
	stopWords := map[string]bool{
		"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
		"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
		"into": true, "is": true, "it": true, "no": true, "not": true, "of": true,
		"on": true, "or": true, "such": true, "that": true, "the": true, "their": true,
		"then": true, "there": true, "these": true, "they": true, "this": true, "to": true,
		"was": true, "will": true, "with": true,
	}
	return &Matcher{stopWords: stopWords}
}

var (
	urlRegex  = regexp.MustCompile(`https?://[^\s]+`)
	wordRegex = regexp.MustCompile(`\b[a-z0-9]+(?:[_-][a-z0-9]+)*\b`)
)

// Tokenize extracts term frequencies from text.
func (m *Matcher) Tokenize(text string) map[string]int {
	text = strings.ToLower(text)
	text = urlRegex.ReplaceAllString(text, "")

	terms := make(map[string]int)
	for _, word := range wordRegex.FindAllString(text, -1) {
		if m.stopWords[word] || len(word) < 2 {
			continue
		}
		if isNumeric(word) {
			continue
		}
		terms[stem(word)]++
	}
	return terms
}

// Similarity computes cosine similarity between two texts with flat term
// weights. Returns 0 when either side has no usable terms.
func (m *Matcher) Similarity(text1, text2 string) float64 {
	t1 := m.Tokenize(text1)
	t2 := m.Tokenize(text2)
	if len(t1) == 0 || len(t2) == 0 {
		return 0.0
	}
	return cosine(termVector(t1, nil), termVector(t2, nil))
}

// stem removes common suffixes. Not a full Porter stemmer, but enough for
// tag and keyword matching.
func stem(word string) string {
	suffixes := []string{"ing", "ed", "es", "s", "er", "ly"}
	for _, suffix := range suffixes {
		if strings.HasSuffix(word, suffix) && len(word) > len(suffix)+2 {
			return word[:len(word)-len(suffix)]
		}
	}
	return word
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
