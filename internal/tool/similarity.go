package tool

// Similarity computes a normalized similarity ratio in [0, 1] between two
// strings: 2*M/T, where M is the total length of the matching blocks found
// by recursively locating the longest common contiguous run, and T is the
// combined length of both inputs. This mirrors the ratio the reconciler's
// threshold was tuned against; two empty strings are maximally similar.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := matchingTotal(ra, rb, 0, len(ra), 0, len(rb))
	return 2 * float64(m) / float64(total)
}

// matchingTotal sums the lengths of all matching blocks within
// a[alo:ahi] / b[blo:bhi] by splitting around the longest match.
func matchingTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, k := longestMatch(a, b, alo, ahi, blo, bhi)
	if k == 0 {
		return 0
	}
	return k +
		matchingTotal(a, b, alo, i, blo, j) +
		matchingTotal(a, b, i+k, ahi, j+k, bhi)
}

// longestMatch finds the longest contiguous matching run between
// a[alo:ahi] and b[blo:bhi]. Ties resolve to the earliest position in a,
// then the earliest in b, keeping the block decomposition deterministic.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int, bhi-blo)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestk
}
