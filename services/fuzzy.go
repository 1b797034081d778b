package services

import (
	"strings"

	"copyhound/util"
)

// LevenshteinRatio liefert die Editierdistanz-Ähnlichkeit zweier Strings
// (0..1), unabhängig von Groß-/Kleinschreibung.
func LevenshteinRatio(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	s1 = strings.ToLower(s1)
	s2 = strings.ToLower(s2)
	if s1 == s2 {
		return 1
	}

	maxLen := max(len([]rune(s1)), len([]rune(s2)))
	return 1 - float64(util.Levenshtein(s1, s2))/float64(maxLen)
}

// TokenSetRatio liefert die Jaccard-Ähnlichkeit der Wortmengen und ist
// damit unempfindlich gegen Wortreihenfolge.
func TokenSetRatio(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}

	tokens1 := tokenSet(s1)
	tokens2 := tokenSet(s2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0
	}

	intersection := 0
	for t := range tokens1 {
		if _, ok := tokens2[t]; ok {
			intersection++
		}
	}
	union := len(tokens1) + len(tokens2) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(s)) {
		out[t] = struct{}{}
	}
	return out
}

// PartialRatio schiebt den kürzeren String als Fenster über den längeren
// und liefert das beste Teilstück-Verhältnis. Nützlich für Teiltitel.
func PartialRatio(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	s1 = strings.ToLower(s1)
	s2 = strings.ToLower(s2)

	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) > len(r2) {
		r1, r2 = r2, r1
	}

	best := 0.0
	for i := 0; i+len(r1) <= len(r2); i++ {
		window := string(r2[i : i+len(r1)])
		if ratio := LevenshteinRatio(string(r1), window); ratio > best {
			best = ratio
		}
	}
	return best
}

// CombinedFuzzyScore kombiniert die drei Maße mit 0.4/0.3/0.3.
func CombinedFuzzyScore(s1, s2 string) float64 {
	return 0.4*LevenshteinRatio(s1, s2) + 0.3*TokenSetRatio(s1, s2) + 0.3*PartialRatio(s1, s2)
}
