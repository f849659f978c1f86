package memory

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxTags caps the tag set derived from a memory's content.
const MaxTags = 5

// NFKC folds full-width forms (，！？：；（）) to their ASCII equivalents
// before the punctuation set is applied.
var punctuation = strings.NewReplacer(
	",", " ", ".", " ", "!", " ", "?", " ", ";", " ", ":", " ",
	"(", " ", ")", " ", "[", " ", "]", " ", "\"", " ",
	"。", " ", "、", " ", "「", " ", "」", " ", "『", " ", "』", " ",
	"“", " ", "”", " ", "…", " ",
)

func normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// words splits text into lowercase, punctuation-free words.
func words(text string) []string {
	return strings.Fields(punctuation.Replace(normalize(text)))
}

// Tokenize returns the unique words longer than one character, in order of
// first appearance. Memory tags and query terms both come from here.
func Tokenize(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range words(text) {
		if utf8.RuneCountInString(w) <= 1 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func extractTags(text string) []string {
	tags := Tokenize(text)
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	return tags
}
