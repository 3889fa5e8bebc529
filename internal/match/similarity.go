package match

// Ratio computes Ratcliff/Obershelp similarity between two strings: twice
// the number of matching characters (found by recursively locating the
// longest common substring) divided by the total length. The result is in
// [0, 1]; two empty strings are identical (1.0).
//
// This is the same family of metric as Python's difflib SequenceMatcher,
// which the matching threshold was tuned against. It is not edit distance.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	m := matchingRunes(ra, rb)
	return 2 * float64(m) / float64(len(ra)+len(rb))
}

// matchingRunes counts matched runes: the longest common substring, plus
// recursively whatever matches to its left and right.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestCommonRun finds the first longest common substring of a and b,
// returning its start offsets and length. Standard DP over suffix match
// lengths with two rolling rows.
func longestCommonRun(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > size {
				size = cur[j]
				ai = i - size
				bi = j - size
			}
		}
		prev, cur = cur, prev
		clear(cur)
	}

	return ai, bi, size
}
