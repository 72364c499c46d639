package fuzzy

// Distance returns the Levenshtein distance between a and b, counted in runes
// with unit cost for insertions, deletions and substitutions.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	d, _ := bounded(ra, rb, max(len(ra), len(rb)))
	return d
}

// Bounded computes the distance between a and b but gives up as soon as it
// provably exceeds limit. The returned bool is false in that case and the
// distance is only known to be greater than limit.
func Bounded(a, b string, limit int) (int, bool) {
	return bounded([]rune(a), []rune(b), limit)
}

func bounded(a, b []rune, limit int) (int, bool) {
	if limit < 0 {
		return 0, false
	}
	if abs(len(a)-len(b)) > limit {
		return limit + 1, false
	}
	if len(a) == 0 {
		return len(b), true
	}
	if len(b) == 0 {
		return len(a), true
	}
	// two rows, indexed by position in b
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		// every later cell is at least the smallest cell of this row
		if rowMin > limit {
			return limit + 1, false
		}
		prev, curr = curr, prev
	}
	d := prev[len(b)]
	return d, d <= limit
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
