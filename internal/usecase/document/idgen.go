package document

import "math"

// Retry budget bounds for identifier assignment.
const (
	minAttempts = 16
	maxAttempts = 1024
)

// retryBudget computes how many random draws assignment may spend before
// declaring the identifier space exhausted. The budget grows as the space
// fills: with used fraction u, the chance that n independent draws all
// collide is u^n, so n is sized to push that below ~1e-9, clamped to
// [minAttempts, maxAttempts]. A full space yields 0.
func retryBudget(space, used uint64) int {
	if space == 0 || used >= space {
		return 0
	}
	if used == 0 {
		return minAttempts
	}

	u := float64(used) / float64(space)
	// u < 1 here, so ln(u) < 0 and the quotient is positive.
	n := math.Ceil(math.Log(1e-9) / math.Log(u))
	if n < minAttempts {
		return minAttempts
	}
	if n > maxAttempts {
		return maxAttempts
	}
	return int(n)
}
