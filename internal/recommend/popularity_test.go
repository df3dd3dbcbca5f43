package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePopularity(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected *PopularityWindow
	}{
		{"global superstar", "Global / Superstar", &PopularityWindow{Label: "Global / Superstar", Low: 90, High: 100, Tolerance: 5}},
		{"hot established", "Hot / Established", &PopularityWindow{Label: "Hot / Established", Low: 75, High: 89, Tolerance: 5}},
		{"buzzing moderate", "Buzzing / Moderate", &PopularityWindow{Label: "Buzzing / Moderate", Low: 50, High: 74, Tolerance: 5}},
		{"growing", "Growing", &PopularityWindow{Label: "Growing", Low: 25, High: 49, Tolerance: 15}},
		{"rising", "Rising", &PopularityWindow{Label: "Rising", Low: 15, High: 24, Tolerance: 17}},
		{"under the radar", "Under the Radar", &PopularityWindow{Label: "Under the Radar", Low: 0, High: 14, Tolerance: 20}},
		{"any means no filter", "Any", nil},
		{"case insensitive any", "any", nil},
		{"empty label", "", nil},
		{"unknown label is not an error", "Mega Ultra Famous", nil},
		{"label is case insensitive", "growing", &PopularityWindow{Label: "Growing", Low: 25, High: 49, Tolerance: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePopularity(tt.label, nil)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolvePopularityExplicitRange(t *testing.T) {
	t.Run("explicit range wins over label", func(t *testing.T) {
		got := ResolvePopularity("Global / Superstar", []int{10, 30})
		assert.NotNil(t, got)
		assert.Equal(t, 10, got.Low)
		assert.Equal(t, 30, got.High)
	})

	t.Run("explicit range without label", func(t *testing.T) {
		got := ResolvePopularity("", []int{40, 60})
		assert.NotNil(t, got)
		assert.Equal(t, 40, got.Low)
		assert.Equal(t, 60, got.High)
		assert.Equal(t, 5, got.Tolerance)
	})

	t.Run("inverted range ignored", func(t *testing.T) {
		got := ResolvePopularity("", []int{80, 20})
		assert.Nil(t, got)
	})

	t.Run("out of bounds range ignored", func(t *testing.T) {
		assert.Nil(t, ResolvePopularity("", []int{-5, 50}))
		assert.Nil(t, ResolvePopularity("", []int{50, 150}))
	})
}

// Resolution must be deterministic and low tiers must carry strictly more
// slack than the baseline.
func TestResolvePopularityStableAndLowTierTolerance(t *testing.T) {
	for i := 0; i < 5; i++ {
		first := ResolvePopularity("Growing", nil)
		second := ResolvePopularity("Growing", nil)
		assert.Equal(t, first, second)
	}

	for _, label := range []string{"Growing", "Rising", "Under the Radar"} {
		low := ResolvePopularity(label, nil)
		assert.NotNil(t, low)
		assert.Greater(t, low.Tolerance, baseTolerance, "low tier %s", label)
	}
	for _, label := range []string{"Global / Superstar", "Hot / Established", "Buzzing / Moderate"} {
		high := ResolvePopularity(label, nil)
		assert.NotNil(t, high)
		assert.Equal(t, baseTolerance, high.Tolerance, "high tier %s", label)
	}
}

func TestEffectiveBoundsClamping(t *testing.T) {
	w := PopularityWindow{Low: 90, High: 100, Tolerance: 5}
	min, max := w.EffectiveBounds()
	assert.Equal(t, 85, min)
	assert.Equal(t, 100, max)

	w = PopularityWindow{Low: 0, High: 14, Tolerance: 20}
	min, max = w.EffectiveBounds()
	assert.Equal(t, 0, min)
	assert.Equal(t, 34, max)
}

func TestWindowContains(t *testing.T) {
	w := PopularityWindow{Low: 90, High: 100, Tolerance: 5}
	assert.True(t, w.Contains(85))
	assert.True(t, w.Contains(100))
	assert.False(t, w.Contains(84))
}

func TestIsLowPopularityTier(t *testing.T) {
	assert.True(t, IsLowPopularityTier("Growing"))
	assert.True(t, IsLowPopularityTier("Rising"))
	assert.True(t, IsLowPopularityTier("Under the Radar"))
	assert.False(t, IsLowPopularityTier("Global / Superstar"))
	assert.False(t, IsLowPopularityTier(""))
	assert.False(t, IsLowPopularityTier("nonsense"))
}
