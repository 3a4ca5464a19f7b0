package match

import (
	"strings"
	"unicode"
)

// trimmedSuffixes are dropped by FoldTrimmed, longest first.
var trimmedSuffixes = []string{"timestamp", "ids", "utc", "id", "at"}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// Fold lowercases s and drops separators, so OrderID, order_id and
// order-id all fold to "orderid".
func Fold(s string) string {
	return strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}

		return unicode.ToLower(r)
	}, s)
}

// FoldTrimmed is Fold followed by the removal of one trailing id-like
// suffix. A name that is nothing but the suffix is kept whole.
func FoldTrimmed(s string) string {
	folded := Fold(s)

	for _, suffix := range trimmedSuffixes {
		if rest, ok := strings.CutSuffix(folded, suffix); ok && rest != "" {
			return rest
		}
	}

	return folded
}
