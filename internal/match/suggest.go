package match

import (
	"cmp"
	"slices"
)

// DefaultSuggestionThreshold is the lowest similarity a name needs to be
// offered as a suggestion.
const DefaultSuggestionThreshold = 0.6

type scored struct {
	name  string
	score float64
}

func score(a, b string) float64 {
	s := Similarity(FoldTrimmed(a), FoldTrimmed(b))
	if s < DefaultSuggestionThreshold {
		s = max(s, Similarity(Fold(a), Fold(b)))
	}

	return s
}

// Suggest returns up to n names from pool that look like name, best first.
// Ties are broken alphabetically.
func Suggest(name string, pool []string, n int) []string {
	var hits []scored

	for _, cand := range pool {
		if cand == name {
			continue
		}

		if s := score(name, cand); s >= DefaultSuggestionThreshold {
			hits = append(hits, scored{name: cand, score: s})
		}
	}

	slices.SortStableFunc(hits, func(x, y scored) int {
		if c := cmp.Compare(y.score, x.score); c != 0 {
			return c
		}

		return cmp.Compare(x.name, y.name)
	})

	out := make([]string, 0, min(n, len(hits)))
	for _, h := range hits[:min(n, len(hits))] {
		out = append(out, h.name)
	}

	return out
}
