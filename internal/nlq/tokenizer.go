package nlq

import (
	"strings"
	"unicode"
)

// stopWords are dropped during normalization: articles, conjunctions,
// common interrogatives and auxiliary verbs that carry no schema
// information. Words of length <= 2 are dropped unconditionally.
var stopWords = map[string]bool{
	"about": true, "after": true, "all": true, "also": true, "and": true,
	"any": true, "are": true, "been": true, "before": true, "but": true,
	"can": true, "could": true, "did": true, "does": true, "during": true,
	"each": true, "for": true, "from": true, "had": true, "has": true,
	"have": true, "how": true, "into": true, "its": true, "made": true,
	"make": true, "many": true, "more": true, "most": true, "not": true,
	"our": true, "out": true, "over": true, "show": true, "should": true,
	"some": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "was": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "while": true, "who": true, "whom": true,
	"why": true, "will": true, "with": true, "would": true, "you": true,
	"your": true,
}

// Normalize lower-cases a question, strips punctuation, and returns its
// meaningful tokens with duplicates removed, preserving first-seen
// order. Empty input yields no tokens.
func Normalize(question string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(question) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) <= 2 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}
