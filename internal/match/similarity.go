package match

// Similarity returns a ratio in [0, 1] between two normalized school keys
// using Dice's coefficient over character bigrams. Bigrams tolerate small
// spelling differences and word reordering better than whole-token
// comparison, and the score is symmetric, so candidate order cannot
// change the result.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	ag := bigrams(a)
	bg := bigrams(b)
	if len(ag) == 0 || len(bg) == 0 {
		return 0
	}

	overlap := 0
	totalA := 0
	for gram, n := range ag {
		totalA += n
		if m := bg[gram]; m > 0 {
			overlap += min(n, m)
		}
	}
	totalB := 0
	for _, n := range bg {
		totalB += n
	}

	return 2 * float64(overlap) / float64(totalA+totalB)
}

// bigrams counts the character bigrams of a string, rune-aware
func bigrams(s string) map[string]int {
	runes := []rune(s)
	grams := make(map[string]int, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}
