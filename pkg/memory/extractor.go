package memory

import (
	"strings"
	"unicode"
)

const maxExtractedTopics = 10

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "as": {}, "is": {}, "was": {},
	"are": {}, "were": {}, "be": {}, "been": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "can": {}, "may": {}, "might": {},
	"must": {}, "i": {}, "you": {}, "he": {}, "she": {}, "it": {},
	"we": {}, "they": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

// ExtractTopics pulls candidate topic keywords out of a message. It
// lowercases, strips punctuation, drops short words and stopwords, and
// dedupes preserving first appearance, capped at 10. Deterministic for a
// given input.
func ExtractTopics(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	seen := make(map[string]struct{})
	var topics []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		topics = append(topics, word)
		if len(topics) == maxExtractedTopics {
			break
		}
	}
	return topics
}
