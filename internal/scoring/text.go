package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokens shorter than this never match fuzzily; "red" and "bed" stay different.
const minFuzzyTokenLen = 5

// normalize folds case, strips diacritics and collapses everything that is
// not a letter or digit into single spaces.
func normalize(s string) string {
	// Transformers and casers carry state, so build them per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.FieldsFunc(folded, isSeparator), " ")
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

func tokenize(s string) []string {
	return strings.Fields(normalize(s))
}

// similarity is the token-overlap (Dice) ratio 2*|shared| / (|a|+|b|) in [0,1].
// Each token is matched at most once. With typoTolerance > 0, tokens left
// unmatched after the exact pass may pair up when their edit distance is within
// the tolerance.
func similarity(a, b string, typoTolerance int) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	used := make([]bool, len(tb))
	shared := 0
	var unmatched []string

	for _, x := range ta {
		if j := firstUnused(tb, used, func(y string) bool { return x == y }); j >= 0 {
			used[j] = true
			shared++
			continue
		}
		unmatched = append(unmatched, x)
	}

	if typoTolerance > 0 {
		for _, x := range unmatched {
			if utf8.RuneCountInString(x) < minFuzzyTokenLen {
				continue
			}
			j := firstUnused(tb, used, func(y string) bool {
				return utf8.RuneCountInString(y) >= minFuzzyTokenLen && levenshtein.ComputeDistance(x, y) <= typoTolerance
			})
			if j >= 0 {
				used[j] = true
				shared++
			}
		}
	}

	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

func firstUnused(tokens []string, used []bool, match func(string) bool) int {
	for i, t := range tokens {
		if !used[i] && match(t) {
			return i
		}
	}
	return -1
}
