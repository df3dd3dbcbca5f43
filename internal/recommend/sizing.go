package recommend

import "math"

// Request sizing for the two AI attempts. The first call oversizes against
// expected popularity-filter attrition; the second grows faster because the
// first attempt already showed how lossy filtering is for this query. Both
// are hard-capped so the token budget downstream stays bounded.
const (
	firstRequestMultiplier = 1.5
	firstRequestCap        = 30

	secondRequestMultiplier = 2.0
	secondRequestFloor      = 5
	secondRequestCap        = 40
)

// FirstRequestSize computes how many songs to ask the AI for on attempt 1.
func FirstRequestSize(limit int) int {
	if limit < 1 {
		limit = 1
	}
	size := int(math.Ceil(float64(limit) * firstRequestMultiplier))
	if size < limit {
		size = limit
	}
	if size > firstRequestCap {
		size = firstRequestCap
	}
	return size
}

// SecondRequestSize computes the attempt-2 ask from how many tracks are
// still missing after filtering.
func SecondRequestSize(remainingNeeded int) int {
	if remainingNeeded < 1 {
		remainingNeeded = 1
	}
	size := int(math.Ceil(float64(remainingNeeded) * secondRequestMultiplier))
	if size < secondRequestFloor {
		size = secondRequestFloor
	}
	if size > secondRequestCap {
		size = secondRequestCap
	}
	return size
}
