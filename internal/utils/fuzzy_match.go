package utils

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scores returned by Ratio, PartialRatio, TokenSetRatio and WeightedRatio are
// in the 0..100 range. LevenshteinSimilarity returns 0..1.

// Ratio is the indel similarity of a and b: 100 * (1 - indel/(len(a)+len(b))).
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	lcs := longestCommonSubsequence(ra, rb)
	return 100 * float64(2*lcs) / float64(total)
}

// PartialRatio is the best Ratio between the shorter string and every
// equally long window of the longer one.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	if len(short) == len(long) {
		return Ratio(string(short), string(long))
	}

	best := 0.0
	s := string(short)
	for i := 0; i+len(short) <= len(long); i++ {
		score := Ratio(s, string(long[i:i+len(short)]))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares both strings after sorting their tokens.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the token intersection against each side's
// remainder. Sharing at least one token while one side has nothing else
// scores 100.
func TokenSetRatio(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var sect, diffAB, diffBA []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			sect = append(sect, tok)
		} else {
			diffAB = append(diffAB, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffBA = append(diffBA, tok)
		}
	}
	sort.Strings(sect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)

	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sectStr := strings.Join(sect, " ")
	combinedAB := strings.TrimSpace(sectStr + " " + strings.Join(diffAB, " "))
	combinedBA := strings.TrimSpace(sectStr + " " + strings.Join(diffBA, " "))

	best := Ratio(combinedAB, combinedBA)
	if sectStr != "" {
		best = max(best, Ratio(sectStr, combinedAB), Ratio(sectStr, combinedBA))
	}
	return best
}

// WeightedRatio picks the most appropriate scorer for the length ratio of the
// two inputs, the way a general-purpose "best guess" scorer does.
func WeightedRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	base := Ratio(a, b)
	lenRatio := float64(max(la, lb)) / float64(min(la, lb))

	const unbaseScale = 0.95
	if lenRatio < 1.5 {
		return max(base, TokenSortRatio(a, b)*unbaseScale, TokenSetRatio(a, b)*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= 8 {
		partialScale = 0.6
	}
	partial := PartialRatio(a, b) * partialScale
	partialTokens := PartialRatio(sortedTokens(a), sortedTokens(b)) * unbaseScale * partialScale
	return max(base, partial, partialTokens)
}

// LevenshteinSimilarity is 1 - distance/maxLen.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

func longestCommonSubsequence(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		out[tok] = struct{}{}
	}
	return out
}

func sortedTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}
