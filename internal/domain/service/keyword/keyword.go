// Package keyword implements the lexical side of question matching: keyword
// extraction and Jaccard similarity over keyword sets.
package keyword

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopWords are dropped from every keyword set: articles, prepositions,
// interrogatives and filler common to the question corpus.
var stopWords = map[string]struct{}{
	"вопрос": {}, "что": {}, "как": {}, "где": {}, "когда": {},
	"почему": {}, "зачем": {}, "кто": {}, "какой": {}, "какая": {},
	"какие": {}, "это": {}, "есть": {}, "ли": {}, "а": {}, "и": {},
	"или": {}, "но": {}, "на": {}, "в": {}, "с": {}, "по": {},
	"для": {}, "от": {}, "до": {}, "из": {}, "к": {}, "у": {},
	"о": {}, "об": {}, "про": {}, "со": {}, "во": {}, "за": {},
	"под": {}, "над": {}, "перед": {}, "после": {}, "между": {},
	"через": {}, "без": {}, "при": {}, "около": {}, "вокруг": {},
	"внутри": {}, "снаружи": {}, "вверху": {}, "внизу": {},
	"справа": {}, "слева": {}, "существует": {},
}

// importantWords gate the whole keyword set: unless at least one of these is
// present the set is discarded entirely. Precision over recall — generic
// small talk must not produce accidental matches against the corpus.
var importantWords = map[string]struct{}{
	"нло": {}, "бог": {}, "бога": {}, "боги": {},
	"инопланетяне": {}, "пришельцы": {}, "космос": {}, "вселенная": {},
}

// Extract returns the normalized keyword set of text: lower-cased, Unicode
// punctuation stripped, stop words removed, tokens of length <= 2 dropped.
// The result is empty unless it contains at least one important word.
func Extract(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	seen := make(map[string]struct{})
	keywords := make([]string, 0, 8)
	hasImportant := false
	for _, word := range strings.Fields(cleaned) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if _, ok := importantWords[word]; ok {
			hasImportant = true
		}
	}

	if !hasImportant {
		return nil
	}
	return keywords
}

// Similarity computes the Jaccard index of two keyword sets. Either set being
// empty yields 0.
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := toSet(a)
	setB := toSet(b)
	intersection := 0
	union := len(setA)
	for w := range setB {
		if _, ok := setA[w]; ok {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
