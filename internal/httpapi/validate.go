package httpapi

import (
	"errors"
	"strings"
)

var errNotJSON = errors.New("request must be JSON")

const (
	maxEmojis      = 12
	maxQueryLength = 500
	minLimit       = 1
	maxLimit       = 50
)

// searchRequest is the body shared by /api/search and /api/recommend.
type searchRequest struct {
	Query           string   `json:"query"`
	Emojis          []string `json:"emojis"`
	Limit           int      `json:"limit"`
	PopularityLabel string   `json:"popularity_label"`
	PopularityRange []int    `json:"popularity_range"`
	UserID          *int64   `json:"user_id"`

	// prior analysis, only honored by /api/recommend
	Analysis *analysisPayload `json:"analysis"`
}

type analysisPayload struct {
	Mood            string   `json:"mood"`
	MatchedCriteria []string `json:"matched_criteria"`
}

func trimQuery(q string) string {
	return strings.TrimSpace(q)
}

// parseEmojis trims, dedupes and caps the emoji list.
func parseEmojis(raw []string) []string {
	var emojis []string
	seen := make(map[string]struct{})
	for _, e := range raw {
		trimmed := strings.TrimSpace(e)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		emojis = append(emojis, trimmed)
		if len(emojis) >= maxEmojis {
			break
		}
	}
	return emojis
}

// normalizeLimit falls back to the default for missing or out-of-range
// values rather than erroring.
func normalizeLimit(raw, def int) int {
	if raw < minLimit || raw > maxLimit {
		return def
	}
	return raw
}
