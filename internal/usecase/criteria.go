package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLength is the shortest criteria token kept. Anything of two
// characters or fewer ("ai", "ux", "a") is dropped.
const minTokenLength = 3

// criteriaStopWords are filler words that would otherwise match almost every
// tagline as substrings
var criteriaStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "into": true, "are": true, "was": true,
	"our": true, "your": true, "you": true, "who": true, "what": true,
	"which": true, "some": true, "any": true, "can": true, "need": true,
	"want": true, "looking": true, "like": true, "something": true,
}

// TokenizeCriteria splits free-text criteria into normalized lowercase
// keywords. Surrounding punctuation is stripped, short tokens and stop words
// are dropped, and duplicates are removed while preserving first occurrence.
func TokenizeCriteria(criteria string) []string {
	words := strings.Fields(strings.ToLower(criteria))

	seen := make(map[string]bool, len(words))
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(word) < minTokenLength {
			continue
		}
		if criteriaStopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		tokens = append(tokens, word)
	}

	return tokens
}
