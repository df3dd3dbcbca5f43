package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichedTrackIdentityKey(t *testing.T) {
	t.Run("same catalog id means same key", func(t *testing.T) {
		a := EnrichedTrack{ID: "abc123", Title: "One", Artist: "X"}
		b := EnrichedTrack{ID: "abc123", Title: "Totally Different", Artist: "Y"}
		assert.Equal(t, a.IdentityKey(), b.IdentityKey())
	})

	t.Run("no id falls back to lowercase title|artist", func(t *testing.T) {
		a := EnrichedTrack{Title: "Song Title", Artist: "Some Artist"}
		b := EnrichedTrack{Title: "song title", Artist: "SOME ARTIST"}
		assert.Equal(t, "song title|some artist", a.IdentityKey())
		assert.Equal(t, a.IdentityKey(), b.IdentityKey())
	})

	t.Run("id key differs from composite key", func(t *testing.T) {
		withID := EnrichedTrack{ID: "xyz", Title: "Song", Artist: "Artist"}
		withoutID := EnrichedTrack{Title: "Song", Artist: "Artist"}
		assert.NotEqual(t, withID.IdentityKey(), withoutID.IdentityKey())
	})

	t.Run("empty track has no key", func(t *testing.T) {
		assert.Equal(t, "", EnrichedTrack{}.IdentityKey())
	})
}

func TestCandidateSongKey(t *testing.T) {
	a := CandidateSong{Title: " Hello ", Artist: "Adele"}
	b := CandidateSong{Title: "hello", Artist: "ADELE"}
	assert.Equal(t, a.Key(), b.Key())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms       int
		expected string
	}{
		{210000, "3:30"},
		{59000, "0:59"},
		{60000, "1:00"},
		{61000, "1:01"},
		{754000, "12:34"},
		{0, ""},
		{-5, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.ms), "ms=%d", tt.ms)
	}
}
