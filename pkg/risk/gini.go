package risk

import "sort"

// Gini computes the Gini coefficient of a holder-amount distribution.
// 0 is perfect equality, values approaching 1 mean concentration in a
// single holder. Empty and all-zero inputs yield 0. The input slice is
// not modified.
func Gini(amounts []float64) float64 {
	if len(amounts) == 0 {
		return 0
	}
	sorted := make([]float64, len(amounts))
	copy(sorted, amounts)
	sort.Float64s(sorted)

	var total, weighted float64
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total == 0 {
		return 0
	}
	n := float64(len(sorted))
	return (2*weighted)/(n*total) - (n+1)/n
}
