package scoring

import (
	"math"
	"strings"
	"unicode"
)

// SentimentAnalyzer returns a polarity compound in [-1, 1].
type SentimentAnalyzer interface {
	Compound(text string) float64
}

const (
	negationScalar   = -0.74
	boosterIncrement = 0.293
	exclamationBoost = 0.292
	maxExclamations  = 4
	normalizeAlpha   = 15.0
	negationLookback = 3
)

// lexicon holds word valences on the usual -4..4 scale, tuned for comments on artwork.
var lexicon = map[string]float64{
	"love": 3.2, "loved": 2.9, "loving": 2.9, "lovely": 2.8, "adore": 2.9,
	"amazing": 2.8, "awesome": 3.1, "beautiful": 2.9, "gorgeous": 3.0, "stunning": 2.7,
	"great": 3.1, "good": 1.9, "nice": 1.8, "cool": 1.3, "wow": 2.8,
	"incredible": 2.6, "fantastic": 2.6, "wonderful": 2.7, "brilliant": 2.8, "perfect": 2.7,
	"excellent": 2.7, "masterpiece": 3.0, "talented": 2.3, "inspiring": 2.4, "inspired": 2.2,
	"impressive": 2.3, "fabulous": 2.4, "favorite": 2.0, "favourite": 2.0, "happy": 2.7,
	"enjoy": 2.2, "enjoyed": 2.3, "interested": 1.7, "interesting": 1.7, "like": 1.5,
	"appreciate": 1.9, "thanks": 1.9, "thank": 1.5, "best": 3.2, "stunned": 1.5,
	"vibrant": 1.9, "striking": 1.6, "elegant": 2.1, "fun": 2.3, "glad": 2.0,
	"bad": -2.5, "ugly": -3.1, "hate": -2.7, "hated": -3.2, "boring": -1.3,
	"terrible": -2.1, "awful": -2.0, "horrible": -2.5, "worst": -3.1, "meh": -0.4,
	"disappointing": -2.2, "disappointed": -1.9, "lazy": -1.2, "overpriced": -1.6, "scam": -2.5,
	"spam": -1.5, "fake": -2.1, "sad": -2.1, "poor": -2.1, "weird": -0.7,
	"mess": -1.5, "messy": -1.5, "dull": -1.7, "annoying": -1.7, "stolen": -2.2,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "isnt": true,
	"don't": true, "dont": true, "doesn't": true, "doesnt": true, "didn't": true,
	"didnt": true, "wasn't": true, "wasnt": true, "can't": true, "cant": true,
	"won't": true, "wont": true, "aren't": true, "arent": true, "nothing": true,
	"nobody": true, "hardly": true, "without": true,
}

var boosters = map[string]bool{
	"very": true, "really": true, "so": true, "extremely": true, "absolutely": true,
	"incredibly": true, "totally": true, "truly": true, "super": true, "such": true,
	"most": true, "highly": true,
}

// LexiconAnalyzer scores text with a fixed valence lexicon, handling negation,
// booster words and exclamation emphasis.
type LexiconAnalyzer struct{}

func (LexiconAnalyzer) Compound(text string) float64 {
	tokens := tokenize(text)
	var sum float64
	var hits int
	for i, tok := range tokens {
		v, ok := lexicon[tok]
		if !ok {
			continue
		}
		hits++
		if i > 0 && boosters[tokens[i-1]] {
			if v > 0 {
				v += boosterIncrement
			} else {
				v -= boosterIncrement
			}
		}
		for j := i - 1; j >= 0 && j >= i-negationLookback; j-- {
			if negations[tokens[j]] {
				v *= negationScalar
				break
			}
		}
		sum += v
	}
	if hits == 0 {
		return 0
	}
	if bangs := strings.Count(text, "!"); bangs > 0 {
		if bangs > maxExclamations {
			bangs = maxExclamations
		}
		emphasis := float64(bangs) * exclamationBoost
		if sum > 0 {
			sum += emphasis
		} else if sum < 0 {
			sum -= emphasis
		}
	}
	return normalize(sum)
}

func normalize(s float64) float64 {
	c := s / math.Sqrt(s*s+normalizeAlpha)
	if c < -1 {
		return -1
	}
	if c > 1 {
		return 1
	}
	return c
}

func tokenize(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "’", "'")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
