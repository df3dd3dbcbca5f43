package recommend

import (
	"fmt"
	"strings"
)

// MoodQuery is one user request: free text and/or emoji tags plus sizing
// and an optional popularity constraint. Built once at the HTTP boundary,
// never mutated afterwards.
type MoodQuery struct {
	Text   string   `json:"query"`
	Emojis []string `json:"emojis,omitempty"`
	Limit  int      `json:"limit"`

	PopularityLabel string `json:"popularityLabel,omitempty"`
	PopularityRange []int  `json:"popularityRange,omitempty"` // [min, max] on the 0-100 scale

	UserID *int64 `json:"userId,omitempty"`
}

// MoodAnalysis is the short structured summary produced by the AI before
// any songs are requested. Criteria order is display order.
type MoodAnalysis struct {
	Mood            string   `json:"mood"`
	MatchedCriteria []string `json:"matched_criteria"`
}

// CandidateSong is an AI-suggested title/artist pair that has not been
// verified against the catalog yet.
type CandidateSong struct {
	Title           string   `json:"title"`
	Artist          string   `json:"artist"`
	Why             string   `json:"why,omitempty"`
	MatchedCriteria []string `json:"matched_criteria,omitempty"`
}

// Key returns the lowercase title|artist identity used to dedupe
// candidates across requester attempts.
func (c CandidateSong) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Title)) + "|" + strings.ToLower(strings.TrimSpace(c.Artist))
}

// EnrichedTrack is a candidate merged with catalog metadata. Catalog fields
// are nil/empty when no confident match was found; the AI's justification is
// still worth showing in that case.
type EnrichedTrack struct {
	ID                string   `json:"id,omitempty"` // Spotify track ID, empty when unmatched
	Title             string   `json:"title"`
	Artist            string   `json:"artist"`
	Album             string   `json:"album,omitempty"`
	AlbumArt          string   `json:"album_art,omitempty"`
	PreviewURL        string   `json:"preview_url,omitempty"`
	SpotifyURL        string   `json:"spotify_url,omitempty"`
	ReleaseYear       string   `json:"release_year,omitempty"` // catalogs mix YYYY and YYYY-MM-DD, keep as string
	DurationMs        int      `json:"duration_ms,omitempty"`
	DurationFormatted string   `json:"duration_formatted,omitempty"`
	Popularity        *int     `json:"popularity,omitempty"` // nil when the catalog lookup failed
	Why               string   `json:"why,omitempty"`
	MatchedCriteria   []string `json:"matched_criteria,omitempty"`
}

// IdentityKey builds the dedup key: catalog ID when present, else
// lowercase title|artist. Empty when the track carries nothing usable.
func (t EnrichedTrack) IdentityKey() string {
	if t.ID != "" {
		return "id:" + strings.ToLower(strings.TrimSpace(t.ID))
	}
	title := strings.ToLower(strings.TrimSpace(t.Title))
	artist := strings.ToLower(strings.TrimSpace(t.Artist))
	if title == "" && artist == "" {
		return ""
	}
	return title + "|" + artist
}

// FormatDuration renders milliseconds as "M:SS". Returns "" for
// non-positive input so unmatched tracks keep an empty field.
func FormatDuration(durationMs int) string {
	if durationMs <= 0 {
		return ""
	}
	seconds := durationMs / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
