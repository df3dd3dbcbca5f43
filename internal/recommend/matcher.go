package recommend

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/PeytonNagle/MoodMusic2/internal/catalog"
)

// Matcher reconciles AI-suggested songs with real catalog entries. A
// candidate that cannot be matched degrades to a track with empty catalog
// fields instead of being dropped.
type Matcher struct {
	searcher catalog.Searcher

	// Tunable scoring knobs; defaults come from NewMatcher.
	AcceptScore    float64 // minimum composite score to accept a match
	EarlyStopScore float64 // stop the query cascade once a result scores this high
	SearchLimit    int     // results requested per catalog query
	Workers        int     // concurrent candidate lookups
}

func NewMatcher(searcher catalog.Searcher) *Matcher {
	return &Matcher{
		searcher:       searcher,
		AcceptScore:    60,
		EarlyStopScore: 80,
		SearchLimit:    5,
		Workers:        4,
	}
}

// Enrich looks every candidate up in the catalog and returns one
// EnrichedTrack per candidate, in the input order. Lookups run on a small
// worker pool; results are re-slotted by index so ordering never depends on
// catalog latency.
func (m *Matcher) Enrich(ctx context.Context, candidates []CandidateSong) []EnrichedTrack {
	out := make([]EnrichedTrack, len(candidates))
	if len(candidates) == 0 {
		return out
	}

	workers := m.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	type job struct {
		idx  int
		cand CandidateSong
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out[j.idx] = m.enrichOne(ctx, j.cand)
			}
		}()
	}
	for i, c := range candidates {
		jobs <- job{idx: i, cand: c}
	}
	close(jobs)
	wg.Wait()

	return out
}

func (m *Matcher) enrichOne(ctx context.Context, cand CandidateSong) EnrichedTrack {
	track, ok := m.findBestMatch(ctx, cand.Title, cand.Artist)
	if !ok {
		return EnrichedTrack{
			Title:           cand.Title,
			Artist:          cand.Artist,
			Album:           "Unknown Album",
			Why:             cand.Why,
			MatchedCriteria: cand.MatchedCriteria,
		}
	}

	return EnrichedTrack{
		ID:                track.ID,
		Title:             track.Title,
		Artist:            track.PrimaryArtist(),
		Album:             track.Album,
		AlbumArt:          track.AlbumArt,
		PreviewURL:        track.PreviewURL,
		SpotifyURL:        track.ExternalURL,
		ReleaseYear:       track.ReleaseYear(),
		DurationMs:        track.DurationMs,
		DurationFormatted: FormatDuration(track.DurationMs),
		Popularity:        intPtr(track.Popularity),
		Why:               cand.Why,
		MatchedCriteria:   cand.MatchedCriteria,
	}
}

// findBestMatch runs the three-tier query cascade: field-qualified, quoted
// free text, title only. Each tier's results are scored; the cascade stops
// early on a high-confidence hit.
func (m *Matcher) findBestMatch(ctx context.Context, title, artist string) (catalog.Track, bool) {
	cleanedTitle := CleanTitle(title)
	primaryArtist := PrimaryArtist(artist)

	queries := []string{
		fmt.Sprintf(`track:"%s" artist:"%s"`, cleanedTitle, primaryArtist),
		fmt.Sprintf(`"%s" "%s"`, cleanedTitle, primaryArtist),
		fmt.Sprintf(`"%s"`, cleanedTitle),
	}

	var best catalog.Track
	bestScore := -1.0

	for _, q := range queries {
		results, err := m.searcher.SearchTracks(ctx, q, m.SearchLimit)
		if err != nil {
			// catalog hiccups degrade a single candidate, not the batch
			log.Printf("matcher: catalog query failed: %v", err)
			continue
		}
		for _, track := range results {
			score := m.scoreCandidate(cleanedTitle, primaryArtist, track)
			if score > bestScore {
				best = track
				bestScore = score
			}
		}
		if bestScore >= m.EarlyStopScore {
			break
		}
	}

	if bestScore < m.AcceptScore {
		if bestScore >= 0 {
			log.Printf("matcher: no strong match for %q by %q (best=%.1f)", title, artist, bestScore)
		}
		return catalog.Track{}, false
	}
	return best, true
}

// scoreCandidate combines title similarity (0-100) with artist bonuses:
// +50 when the primary artist is the catalog lead, +20 when it appears
// anywhere in the credits. A near-exact title can still clear the accept
// threshold on its own.
func (m *Matcher) scoreCandidate(cleanedTitle, primaryArtist string, track catalog.Track) float64 {
	trackTitle := CleanTitle(track.Title)
	score := similarityRatio(cleanedTitle, trackTitle) * 100

	wanted := strings.ToLower(primaryArtist)
	if wanted != "" && len(track.Artists) > 0 {
		if wanted == strings.ToLower(track.Artists[0]) {
			score += 50
		}
		for _, a := range track.Artists {
			if wanted == strings.ToLower(a) {
				score += 20
				break
			}
		}
	}
	return score
}

var (
	parentheticalRe = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]`)
	suffixNoiseRe   = regexp.MustCompile(`\s*-\s*(remaster(ed)?( \d{4})?|live.*|single mix|radio edit).*`)
	featureRe       = regexp.MustCompile(`\s*\b(feat\.?|ft\.?|featuring|with)\s+.*`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	artistSplitRe   = regexp.MustCompile(`(?i)\s*[,&/]\s*|\s+(?:x|ft\.?|feat\.?|featuring)\s+`)
)

// CleanTitle normalizes a song title for matching: drops parenthetical and
// bracketed annotations, remaster/live/edit suffixes and feature clauses,
// then lowercases and collapses whitespace. AI-generated titles carry
// annotations the catalog does not index identically.
func CleanTitle(title string) string {
	s := strings.ToLower(title)
	s = parentheticalRe.ReplaceAllString(s, "")
	s = suffixNoiseRe.ReplaceAllString(s, "")
	s = featureRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// PrimaryArtist extracts the lead artist, ignoring featured collaborators.
func PrimaryArtist(artist string) string {
	parts := artistSplitRe.Split(artist, 2)
	return strings.TrimSpace(parts[0])
}

func intPtr(v int) *int { return &v }
