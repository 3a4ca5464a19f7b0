package match

// Distance is the byte-wise Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i

		for j := 1; j <= len(b); j++ {
			up := row[j]

			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			row[j] = min(up+1, row[j-1]+1, diag+cost)
			diag = up
		}
	}

	return row[len(b)]
}

// Similarity maps Distance onto [0, 1], where 1 means equal strings.
func Similarity(a, b string) float64 {
	n := max(len(a), len(b))
	if n == 0 {
		return 1
	}

	return 1 - float64(Distance(a, b))/float64(n)
}
