package ml

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenizer splits product text into lowercase terms, dropping stop words. It holds a
// stateful cases.Caser and must not be shared between goroutines.
type Tokenizer struct {
	lower     cases.Caser
	stopWords map[string]struct{}
}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		lower:     cases.Lower(language.English),
		stopWords: englishStopWords,
	}
}

// Tokenize normalizes text to NFKC, lowercases it and returns the non-stop-word terms
// in order of appearance.
func (t *Tokenizer) Tokenize(text string) []string {
	normalized := t.lower.String(norm.NFKC.String(text))

	var tokens []string
	for _, tok := range tokenPattern.FindAllString(normalized, -1) {
		if _, stop := t.stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
