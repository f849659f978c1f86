package memory

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	BaseImportance = 0.3
	LengthBonus    = 0.1
	EmotionBonus   = 0.05
	MaxImportance  = 1.0
)

// lengthThresholds award LengthBonus each, cumulatively, measured in runes.
var lengthThresholds = []int{20, 50, 100}

// emotionalKeywords are matched as whole words when ASCII, as substrings
// otherwise (CJK text has no word boundaries).
var emotionalKeywords = []string{
	"happy", "sad", "love", "miss", "lonely", "angry", "afraid", "scared",
	"worried", "tired", "excited", "glad", "proud", "hurt", "grateful", "upset",
	"开心", "难过", "喜欢", "想你", "孤独", "害怕", "生气", "担心",
}

// Importance scores text in [0,1]: a base, a bonus per length threshold
// reached and a bonus per distinct emotional keyword.
func Importance(text string) float64 {
	score := BaseImportance

	n := utf8.RuneCountInString(text)
	for _, th := range lengthThresholds {
		if n >= th {
			score += LengthBonus
		}
	}

	score += EmotionBonus * float64(emotionHits(text))
	return math.Min(score, MaxImportance)
}

func emotionHits(text string) int {
	lower := normalize(text)
	set := map[string]bool{}
	for _, w := range words(text) {
		set[w] = true
	}

	hits := 0
	for _, kw := range emotionalKeywords {
		if isASCII(kw) {
			if set[kw] {
				hits++
			}
		} else if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
