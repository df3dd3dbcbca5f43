package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PeytonNagle/MoodMusic2/internal/catalog"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Song Title", "song title"},
		{"Song Title (feat. Someone) [Remastered 2020]", "song title"},
		{"Song Title feat. Someone", "song title"},
		{"Song Title ft. Someone", "song title"},
		{"Song Title featuring Someone Else", "song title"},
		{"Track - Remastered 2011", "track"},
		{"Track - Live at Wembley", "track"},
		{"Track - Radio Edit", "track"},
		{"Uptown Funk (Official Video)", "uptown funk"},
		{"  Spaced   Out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanTitle(tt.input))
		})
	}
}

// Different annotations of the same song must normalize identically.
func TestCleanTitleRoundTrip(t *testing.T) {
	assert.Equal(t,
		CleanTitle("Song Title"),
		CleanTitle("Song Title (feat. Someone) [Remastered 2020]"),
	)
}

func TestPrimaryArtist(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Adele", "Adele"},
		{"Beyoncé feat. Jay-Z", "Beyoncé"},
		{"Silk Sonic, Bruno Mars", "Silk Sonic"},
		{"Simon & Garfunkel", "Simon"},
		{"A x B", "A"},
		{"Artist ft. Other", "Artist"},
		{"Daft Punk", "Daft Punk"}, // "ft" inside a word must not split
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, PrimaryArtist(tt.input))
		})
	}
}

// fakeSearcher returns canned tracks for any query whose substring matches
// a configured key, records every query and can inject per-title latency.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]catalog.Track
	delays  map[string]time.Duration
	queries []string
	err     error
}

func (f *fakeSearcher) SearchTracks(ctx context.Context, query string, limit int) ([]catalog.Track, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	for key, tracks := range f.results {
		if strings.Contains(query, key) {
			if d, ok := f.delays[key]; ok {
				time.Sleep(d)
			}
			return tracks, nil
		}
	}
	return nil, nil
}

func (f *fakeSearcher) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func track(id, title string, popularity int, artists ...string) catalog.Track {
	return catalog.Track{
		ID:          id,
		Title:       title,
		Artists:     artists,
		Album:       "Album for " + title,
		AlbumArt:    "https://img.example/" + id,
		PreviewURL:  "https://preview.example/" + id,
		ExternalURL: "https://open.spotify.com/track/" + id,
		ReleaseDate: "2020-06-01",
		DurationMs:  200000,
		Popularity:  popularity,
	}
}

func TestEnrichMatchesAndFills(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]catalog.Track{
		"bohemian rhapsody": {track("t1", "Bohemian Rhapsody", 90, "Queen")},
	}}
	m := NewMatcher(searcher)

	out := m.Enrich(context.Background(), []CandidateSong{
		{Title: "Bohemian Rhapsody", Artist: "Queen", Why: "iconic", MatchedCriteria: []string{"genre: rock"}},
	})

	assert.Len(t, out, 1)
	got := out[0]
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Queen", got.Artist)
	assert.Equal(t, "2020", got.ReleaseYear)
	assert.Equal(t, "3:20", got.DurationFormatted)
	assert.NotNil(t, got.Popularity)
	assert.Equal(t, 90, *got.Popularity)
	assert.Equal(t, "iconic", got.Why)
	assert.Equal(t, []string{"genre: rock"}, got.MatchedCriteria)
}

func TestEnrichUnmatchedDegradesGracefully(t *testing.T) {
	searcher := &fakeSearcher{} // zero results for every tier
	m := NewMatcher(searcher)

	out := m.Enrich(context.Background(), []CandidateSong{
		{Title: "Obscure Track XYZ123", Artist: "Nonexistent Artist ABC", Why: "fits the vibe"},
	})

	assert.Len(t, out, 1)
	got := out[0]
	assert.Equal(t, "Obscure Track XYZ123", got.Title)
	assert.Equal(t, "Nonexistent Artist ABC", got.Artist)
	assert.Empty(t, got.ID)
	assert.Empty(t, got.AlbumArt)
	assert.Empty(t, got.PreviewURL)
	assert.Nil(t, got.Popularity)
	assert.Equal(t, "fits the vibe", got.Why)
	// all three query tiers were tried before giving up
	assert.Equal(t, 3, searcher.queryCount())
}

func TestEnrichCatalogErrorDegradesSingleCandidate(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("catalog down")}
	m := NewMatcher(searcher)

	out := m.Enrich(context.Background(), []CandidateSong{
		{Title: "Some Song", Artist: "Some Artist"},
	})

	assert.Len(t, out, 1)
	assert.Equal(t, "Some Song", out[0].Title)
	assert.Nil(t, out[0].Popularity)
}

func TestEnrichStopsCascadeOnStrongMatch(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]catalog.Track{
		"wonderwall": {track("t2", "Wonderwall", 80, "Oasis")},
	}}
	m := NewMatcher(searcher)

	m.Enrich(context.Background(), []CandidateSong{{Title: "Wonderwall", Artist: "Oasis"}})

	// exact title + lead artist clears the early-stop score on tier 1
	assert.Equal(t, 1, searcher.queryCount())
}

// Output order must match input order no matter how lookup latency varies.
func TestEnrichPreservesOrder(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]catalog.Track{
			"first":  {track("a", "First", 50, "One")},
			"second": {track("b", "Second", 50, "Two")},
			"third":  {track("c", "Third", 50, "Three")},
			"fourth": {track("d", "Fourth", 50, "Four")},
		},
		delays: map[string]time.Duration{
			"first": 30 * time.Millisecond,
			"third": 15 * time.Millisecond,
		},
	}
	m := NewMatcher(searcher)

	candidates := []CandidateSong{
		{Title: "First", Artist: "One"},
		{Title: "Second", Artist: "Two"},
		{Title: "Third", Artist: "Three"},
		{Title: "Fourth", Artist: "Four"},
	}
	out := m.Enrich(context.Background(), candidates)

	assert.Len(t, out, len(candidates))
	for i, c := range candidates {
		assert.Equal(t, c.Title, out[i].Title, "position %d", i)
	}
}

func TestScoreCandidatePrefersMatchingArtist(t *testing.T) {
	m := NewMatcher(&fakeSearcher{})

	rightArtist := track("r", "Halo (Live)", 70, "Beyoncé")
	wrongArtist := track("w", "Halo", 70, "Cover Band")

	rightScore := m.scoreCandidate("halo", "Beyoncé", rightArtist)
	wrongScore := m.scoreCandidate("halo", "Beyoncé", wrongArtist)

	assert.Greater(t, rightScore, wrongScore,
		"matching primary artist must outrank a closer title on the wrong artist")
}

func TestScoreCandidateNearExactTitleCanStandAlone(t *testing.T) {
	m := NewMatcher(&fakeSearcher{})

	// artist field failed to parse, but the title is exact
	score := m.scoreCandidate("bohemian rhapsody", "qeen", track("x", "Bohemian Rhapsody", 90, "Queen"))
	assert.GreaterOrEqual(t, score, m.AcceptScore)
}

func TestEnrichEmptyInput(t *testing.T) {
	m := NewMatcher(&fakeSearcher{})
	out := m.Enrich(context.Background(), nil)
	assert.Empty(t, out)
}

func TestMatcherQueryShapes(t *testing.T) {
	searcher := &fakeSearcher{}
	m := NewMatcher(searcher)

	m.Enrich(context.Background(), []CandidateSong{{Title: "Song (Remastered)", Artist: "Artist feat. Guest"}})

	assert.Equal(t, []string{
		fmt.Sprintf(`track:%q artist:%q`, "song", "Artist"),
		fmt.Sprintf(`%q %q`, "song", "Artist"),
		fmt.Sprintf(`%q`, "song"),
	}, searcher.queries)
}
