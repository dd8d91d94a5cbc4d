package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// ------------------------------------------------------------------
// Lexicon-based scorer (offline, deterministic). Any other Scorer can be
// plugged into the Analyzer in its place.
// ------------------------------------------------------------------

// Scorer maps text to a polarity in [-1, 1] and a subjectivity in [0, 1].
type Scorer interface {
	Score(text string) (polarity, subjectivity float64)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(text string) (polarity, subjectivity float64)

// Score calls f(text).
func (f ScorerFunc) Score(text string) (float64, float64) { return f(text) }

type entry struct {
	polarity     float64
	subjectivity float64
}

// lexicon holds lowercase single words and phrases.
var lexicon = map[string]entry{
	// bullish
	"bullish": {0.7, 0.8}, "rally": {0.6, 0.5}, "rallies": {0.6, 0.5}, "surge": {0.7, 0.5},
	"surges": {0.7, 0.5}, "soar": {0.8, 0.6}, "soars": {0.8, 0.6}, "jump": {0.5, 0.4},
	"jumps": {0.5, 0.4}, "gain": {0.4, 0.3}, "gains": {0.4, 0.3}, "rise": {0.3, 0.2},
	"rises": {0.3, 0.2}, "upbeat": {0.5, 0.7}, "positive": {0.4, 0.6}, "growth": {0.4, 0.3},
	"upgrade": {0.6, 0.4}, "upgrades": {0.6, 0.4}, "outperform": {0.6, 0.5},
	"buy": {0.5, 0.4}, "strong": {0.4, 0.7}, "stronger": {0.45, 0.7}, "recovery": {0.5, 0.4},
	"breakout": {0.6, 0.5}, "record high": {0.7, 0.4}, "all-time high": {0.7, 0.4},
	"beat": {0.5, 0.3}, "beats": {0.5, 0.3}, "exceeds": {0.5, 0.3}, "beats estimates": {0.6, 0.3},
	"expansion": {0.4, 0.3}, "profit": {0.3, 0.2}, "profitable": {0.4, 0.3},
	"dividend": {0.4, 0.2}, "accumulate": {0.5, 0.4}, "good": {0.7, 0.6}, "great": {0.8, 0.75},
	"best": {1.0, 0.3}, "excellent": {1.0, 1.0}, "optimistic": {0.6, 0.8}, "boost": {0.5, 0.4},
	"higher": {0.25, 0.5}, "top": {0.5, 0.5}, "win": {0.8, 0.4}, "wins": {0.8, 0.4},
	"approval": {0.5, 0.3}, "approved": {0.5, 0.3}, "raises guidance": {0.6, 0.4},
	"price target raised": {0.5, 0.4}, "overweight": {0.4, 0.4},

	// bearish
	"bearish": {-0.7, 0.8}, "crash": {-0.8, 0.6}, "crashes": {-0.8, 0.6}, "plunge": {-0.7, 0.5},
	"plunges": {-0.7, 0.5}, "slump": {-0.6, 0.5}, "slumps": {-0.6, 0.5}, "tumble": {-0.6, 0.5},
	"tumbles": {-0.6, 0.5}, "drop": {-0.4, 0.3}, "drops": {-0.4, 0.3}, "negative": {-0.4, 0.6},
	"downgrade": {-0.6, 0.4}, "downgrades": {-0.6, 0.4}, "underperform": {-0.6, 0.5},
	"sell": {-0.5, 0.4}, "weak": {-0.4, 0.7}, "weaker": {-0.45, 0.7}, "decline": {-0.5, 0.3},
	"declines": {-0.5, 0.3}, "loss": {-0.4, 0.3}, "losses": {-0.4, 0.3}, "selloff": {-0.7, 0.5},
	"sell-off": {-0.7, 0.5}, "fall": {-0.4, 0.3}, "falls": {-0.4, 0.3}, "correction": {-0.5, 0.4},
	"default": {-0.7, 0.4}, "fraud": {-0.8, 0.7}, "scam": {-0.8, 0.8}, "investigation": {-0.5, 0.3},
	"lawsuit": {-0.5, 0.3}, "cut": {-0.3, 0.2}, "cuts": {-0.3, 0.2}, "miss": {-0.5, 0.3},
	"misses": {-0.5, 0.3}, "warning": {-0.5, 0.5}, "concern": {-0.3, 0.5}, "concerns": {-0.3, 0.5},
	"bad": {-0.7, 0.67}, "worst": {-1.0, 1.0}, "terrible": {-1.0, 1.0}, "poor": {-0.4, 0.6},
	"lower": {-0.25, 0.5}, "fear": {-0.5, 0.7}, "fears": {-0.5, 0.7}, "recession": {-0.6, 0.4},
	"bankruptcy": {-0.8, 0.4}, "layoffs": {-0.5, 0.3}, "lowers guidance": {-0.6, 0.4},
	"price target cut": {-0.5, 0.4}, "underweight": {-0.4, 0.4},

	// opinion without direction
	"volatile": {0.0, 0.6}, "uncertain": {0.0, 0.7}, "mixed": {0.0, 0.5},
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true, "isn't": true,
	"aren't": true, "wasn't": true, "don't": true, "doesn't": true, "didn't": true,
	"won't": true, "can't": true, "fails": true, "failed": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "sharply": 1.3, "significantly": 1.3, "strongly": 1.3,
	"extremely": 1.5, "slightly": 0.5, "somewhat": 0.7,
}

// maxPhrase is the longest phrase in the lexicon, in words.
const maxPhrase = 3

// LexiconScorer scores text against a weighted financial lexicon. The
// polarity is the mean of matched entries after negation and intensity
// adjustments; text without any match scores (0, 0).
type LexiconScorer struct{}

// NewLexiconScorer returns the bundled lexicon scorer.
func NewLexiconScorer() *LexiconScorer { return &LexiconScorer{} }

// Score implements Scorer.
func (LexiconScorer) Score(text string) (polarity, subjectivity float64) {
	words := tokenize(text)

	var polSum, subjSum float64
	matches := 0
	for i := 0; i < len(words); {
		e, n, ok := match(words, i)
		if !ok {
			i++
			continue
		}

		p, s := e.polarity, e.subjectivity
		if i > 0 {
			if k, ok := intensifiers[words[i-1]]; ok {
				p *= k
				s *= k
			}
		}
		if negated(words, i) {
			p *= -0.5
		}

		polSum += p
		subjSum += s
		matches++
		i += n
	}

	if matches == 0 {
		return 0, 0
	}
	polarity = clamp(polSum/float64(matches), -1, 1)
	subjectivity = clamp(subjSum/float64(matches), 0, 1)
	return polarity, subjectivity
}

// match finds the longest lexicon phrase starting at words[i].
func match(words []string, i int) (entry, int, bool) {
	for n := min(maxPhrase, len(words)-i); n > 0; n-- {
		if e, ok := lexicon[strings.Join(words[i:i+n], " ")]; ok {
			return e, n, true
		}
	}
	return entry{}, 0, false
}

// negated reports whether one of the two words before words[i] negates it.
func negated(words []string, i int) bool {
	for j := max(0, i-2); j < i; j++ {
		if negations[words[j]] {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
