package recommend

import "strings"

// PopularityWindow is a resolved numeric popularity band plus the slack
// allowed before filtering. Low <= High, both on the Spotify 0-100 scale.
type PopularityWindow struct {
	Label     string
	Low       int
	High      int
	Tolerance int
}

// EffectiveBounds widens the window by its tolerance, clamped to [0, 100].
func (w PopularityWindow) EffectiveBounds() (min, max int) {
	min = w.Low - w.Tolerance
	if min < 0 {
		min = 0
	}
	max = w.High + w.Tolerance
	if max > 100 {
		max = 100
	}
	return min, max
}

// Contains reports whether a known popularity score falls inside the
// tolerant window.
func (w PopularityWindow) Contains(popularity int) bool {
	min, max := w.EffectiveBounds()
	return popularity >= min && popularity <= max
}

const baseTolerance = 5

type popularityTier struct {
	label string
	low   int
	high  int
	extra int // additional tolerance; catalog scores are noisier at the low end
}

// Six fame bands, widest tolerance at the bottom where Spotify scores are
// sparse enough that strict bounds would discard genuine matches.
var popularityTiers = []popularityTier{
	{"Global / Superstar", 90, 100, 0},
	{"Hot / Established", 75, 89, 0},
	{"Buzzing / Moderate", 50, 74, 0},
	{"Growing", 25, 49, 10},
	{"Rising", 15, 24, 12},
	{"Under the Radar", 0, 14, 15},
}

// ResolvePopularity turns a requested label and/or explicit [min,max] range
// into a concrete window, or nil when no filtering was asked for. An explicit
// range wins over the label; an unknown label means "no filter" because this
// is a UI convenience, not a correctness-critical input.
func ResolvePopularity(label string, explicitRange []int) *PopularityWindow {
	labelClean, tier := lookupTier(label)

	if len(explicitRange) == 2 {
		low, high := explicitRange[0], explicitRange[1]
		if low >= 0 && high <= 100 && low <= high {
			tol := baseTolerance
			if tier != nil {
				tol += tier.extra
			}
			return &PopularityWindow{Label: labelClean, Low: low, High: high, Tolerance: tol}
		}
	}

	if tier == nil {
		return nil
	}
	return &PopularityWindow{
		Label:     labelClean,
		Low:       tier.low,
		High:      tier.high,
		Tolerance: baseTolerance + tier.extra,
	}
}

// IsLowPopularityTier reports whether a label names one of the three low
// fame bands, where the AI should sample more creatively.
func IsLowPopularityTier(label string) bool {
	_, tier := lookupTier(label)
	return tier != nil && tier.extra > 0
}

func lookupTier(label string) (string, *popularityTier) {
	clean := strings.TrimSpace(label)
	if clean == "" || strings.EqualFold(clean, "any") {
		return "", nil
	}
	for i := range popularityTiers {
		if strings.EqualFold(popularityTiers[i].label, clean) {
			return popularityTiers[i].label, &popularityTiers[i]
		}
	}
	return clean, nil
}
