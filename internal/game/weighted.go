package game

// Pick draws an index with probability weights[i] / sum(weights).
// Weights must be non-negative with a positive sum.
func Pick(rng Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := rng.IntN(total)
	for i, w := range weights {
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}
