package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstRequestSize(t *testing.T) {
	tests := []struct {
		limit    int
		expected int
	}{
		{1, 2},   // ceil(1.5)
		{10, 15}, // ceil(15)
		{20, 30}, // exactly at cap
		{25, 30}, // capped
		{100, 30},
		{0, 2}, // clamped to at least one song
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FirstRequestSize(tt.limit), "limit=%d", tt.limit)
	}
}

func TestSecondRequestSize(t *testing.T) {
	tests := []struct {
		remaining int
		expected  int
	}{
		{1, 5},  // floor
		{2, 5},  // floor again
		{3, 6},  // 2x
		{10, 20},
		{25, 40}, // capped
		{100, 40},
		{0, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SecondRequestSize(tt.remaining), "remaining=%d", tt.remaining)
	}
}

// The caps must hold for any input.
func TestRequestSizesNeverExceedCaps(t *testing.T) {
	for limit := 0; limit <= 200; limit++ {
		assert.LessOrEqual(t, FirstRequestSize(limit), firstRequestCap)
		assert.LessOrEqual(t, SecondRequestSize(limit), secondRequestCap)
	}
}
