package verification

// sequenceRatio computes the Ratcliff/Obershelp similarity of two strings:
// twice the number of matching characters over the total length, where
// matches are found by recursively splitting around the longest common
// substring. Returns a value in [0, 1].
func sequenceRatio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(matchingTotal(a, b)) / float64(total)
}

func matchingTotal(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	ai, bi, n := longestMatch(a, b)
	if n == 0 {
		return 0
	}
	return matchingTotal(a[:ai], b[:bi]) + n + matchingTotal(a[ai+n:], b[bi+n:])
}

// longestMatch finds the longest common substring, preferring the earliest
// occurrence in a, then in b.
func longestMatch(a, b string) (bestA, bestB, bestLen int) {
	// lengths[j] holds the common suffix length ending at a[i], b[j] for the
	// previous i.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			cur[j+1] = prev[j] + 1
			if cur[j+1] > bestLen {
				bestLen = cur[j+1]
				bestA = i - bestLen + 1
				bestB = j - bestLen + 1
			}
		}
		prev, cur = cur, prev
	}
	return bestA, bestB, bestLen
}
