package matching

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Scorer provides the string similarity algorithms used for publisher and
// product matching. All scores are on the 0-100 scale and every comparison
// is case-insensitive.
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Ratio returns the normalized edit similarity between two strings:
// 100 for equal strings, 0 for nothing in common.
func (s *Scorer) Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 100
	}

	aLen := len([]rune(a))
	bLen := len([]rune(b))
	maxLen := max(aLen, bLen)
	if maxLen == 0 {
		return 100
	}

	distance := levenshtein.ComputeDistance(a, b)
	return (1 - float64(distance)/float64(maxLen)) * 100
}

// TokenSortRatio compares the strings with their tokens sorted, so word
// order does not matter: "Kosmos Verlag" vs "Verlag Kosmos" scores 100.
func (s *Scorer) TokenSortRatio(a, b string) float64 {
	return s.Ratio(sortTokens(a), sortTokens(b))
}

// PartialRatio returns the best Ratio between the shorter string and any
// equally long contiguous window of the longer one. A full substring
// containment therefore scores 100.
func (s *Scorer) PartialRatio(a, b string) float64 {
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))

	short, long := ar, br
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		score := s.Ratio(string(short), string(long[i:i+len(short)]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// BestMatch is the result of ExtractOne.
type BestMatch struct {
	Index  int
	Choice string
	Score  float64
}

// ExtractOne returns the choice with the highest TokenSortRatio against
// the query. The first choice wins ties. Returns false for an empty list.
func (s *Scorer) ExtractOne(query string, choices []string) (BestMatch, bool) {
	if len(choices) == 0 {
		return BestMatch{}, false
	}

	best := BestMatch{Index: 0, Choice: choices[0], Score: s.TokenSortRatio(query, choices[0])}
	for i := 1; i < len(choices); i++ {
		score := s.TokenSortRatio(query, choices[i])
		if score > best.Score {
			best = BestMatch{Index: i, Choice: choices[i], Score: score}
		}
	}
	return best, true
}

// sortTokens lowercases, strips punctuation, and rejoins the tokens in
// sorted order.
func sortTokens(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
