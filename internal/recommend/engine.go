package recommend

import (
	"context"
	"fmt"
	"log"
)

// MoodService is the AI boundary the engine drives: one analysis call per
// request, then up to two recommendation calls. Implementations live in
// internal/moodai.
type MoodService interface {
	AnalyzeMood(ctx context.Context, text string, emojis []string) (MoodAnalysis, error)
	RecommendSongs(ctx context.Context, req SongRequest) ([]CandidateSong, error)
}

// SongRequest carries everything one recommendation call needs. The prior
// analysis is embedded so the model stays consistent across attempts.
type SongRequest struct {
	Text     string
	Emojis   []string
	Analysis MoodAnalysis
	Count    int

	// Popularity hint for the prompt; MinPopularity is the effective lower
	// bound after tolerance, nil when no filter was requested.
	PopularityLabel string
	MinPopularity   *int
}

// Saver receives the final track list for durable history, out-of-band
// relative to the response.
type Saver interface {
	EnqueueSave(query MoodQuery, analysis MoodAnalysis, tracks []EnrichedTrack)
}

// Result is what one recommendation run produces. Partial is set when fewer
// tracks than requested survived even after padding.
type Result struct {
	Songs    []EnrichedTrack
	Analysis MoodAnalysis
	Partial  bool
}

// Engine drives the analyze → request → enrich → filter → dedupe loop.
type Engine struct {
	mood    MoodService
	matcher *Matcher
	saver   Saver
}

// NewEngine builds an engine. saver may be nil when history persistence is
// disabled.
func NewEngine(mood MoodService, matcher *Matcher, saver Saver) *Engine {
	return &Engine{mood: mood, matcher: matcher, saver: saver}
}

// Analyze runs only the mood-analysis step.
func (e *Engine) Analyze(ctx context.Context, q MoodQuery) (MoodAnalysis, error) {
	return e.mood.AnalyzeMood(ctx, q.Text, q.Emojis)
}

// Recommend analyzes the query first and then produces the track list.
// Analyzer failure is fatal: there is nothing to recommend without it.
func (e *Engine) Recommend(ctx context.Context, q MoodQuery) (Result, error) {
	analysis, err := e.mood.AnalyzeMood(ctx, q.Text, q.Emojis)
	if err != nil {
		return Result{}, fmt.Errorf("mood analysis: %w", err)
	}
	return e.RecommendWithAnalysis(ctx, q, analysis)
}

// RecommendWithAnalysis produces the track list from a pre-computed
// analysis. Up to two AI attempts; only both failing is fatal. Popularity
// shortfalls are absorbed by the padding policy, never surfaced as errors.
func (e *Engine) RecommendWithAnalysis(ctx context.Context, q MoodQuery, analysis MoodAnalysis) (Result, error) {
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	window := ResolvePopularity(q.PopularityLabel, q.PopularityRange)

	var (
		pool          []EnrichedTrack         // everything enriched, discovery order
		poolSeen      = map[string]struct{}{} // EnrichedTrack identity keys
		requestedKeys = map[string]struct{}{} // candidate title|artist keys already enriched
	)

	attempt := func(count int) error {
		candidates, err := e.mood.RecommendSongs(ctx, SongRequest{
			Text:            q.Text,
			Emojis:          q.Emojis,
			Analysis:        analysis,
			Count:           count,
			PopularityLabel: windowLabel(window),
			MinPopularity:   windowMin(window),
		})
		if err != nil {
			return err
		}

		var fresh []CandidateSong
		for _, c := range candidates {
			key := c.Key()
			if _, dup := requestedKeys[key]; dup {
				continue
			}
			requestedKeys[key] = struct{}{}
			fresh = append(fresh, c)
		}
		if len(fresh) == 0 {
			return nil
		}

		log.Printf("recommend: enriching %d new songs with catalog data", len(fresh))
		for _, track := range e.matcher.Enrich(ctx, fresh) {
			key := track.IdentityKey()
			if key != "" {
				if _, dup := poolSeen[key]; dup {
					continue
				}
				poolSeen[key] = struct{}{}
			}
			pool = append(pool, track)
		}
		return nil
	}

	firstSize := FirstRequestSize(limit)
	log.Printf("recommend: attempt 1 requesting %d songs (target %d)", firstSize, limit)
	firstErr := attempt(firstSize)
	if firstErr != nil {
		log.Printf("recommend: attempt 1 failed: %v", firstErr)
	}

	filtered := filterByWindow(pool, window)

	var secondErr error
	if len(filtered) < limit {
		if ctx.Err() != nil {
			// caller is gone, do not start another provider call
			log.Printf("recommend: context done, skipping attempt 2: %v", ctx.Err())
		} else {
			secondSize := SecondRequestSize(limit - len(filtered))
			log.Printf("recommend: attempt 2 requesting %d songs (need %d more)", secondSize, limit-len(filtered))
			secondErr = attempt(secondSize)
			if secondErr != nil {
				log.Printf("recommend: attempt 2 failed: %v", secondErr)
			}
			filtered = filterByWindow(pool, window)
		}
	}

	if firstErr != nil && secondErr != nil {
		return Result{}, fmt.Errorf("song recommendation: %w", secondErr)
	}
	if firstErr != nil && len(pool) == 0 {
		// attempt 2 never ran or yielded nothing to fall back on
		return Result{}, fmt.Errorf("song recommendation: %w", firstErr)
	}

	final := filtered
	if len(final) < limit && len(pool) > len(final) && ctx.Err() == nil {
		log.Printf("recommend: popularity filter left %d/%d songs, padding with unfiltered results", len(final), limit)
		final = padFromPool(final, pool, limit)
	}
	if len(final) > limit {
		final = final[:limit]
	}

	partial := len(final) < limit
	if partial {
		log.Printf("recommend: only found %d songs meeting criteria (requested %d)", len(final), limit)
	}

	if e.saver != nil && len(final) > 0 {
		e.saver.EnqueueSave(q, analysis, final)
	}

	return Result{Songs: final, Analysis: analysis, Partial: partial}, nil
}

// DefaultLimit is the song count used when the caller sends none or an
// out-of-range value.
const DefaultLimit = 10

// filterByWindow keeps tracks whose known popularity falls in the tolerant
// window. Tracks with unknown popularity are kept: rejecting them would bias
// the result against catalog misses.
func filterByWindow(tracks []EnrichedTrack, window *PopularityWindow) []EnrichedTrack {
	if window == nil {
		return append([]EnrichedTrack(nil), tracks...)
	}
	var kept []EnrichedTrack
	for _, t := range tracks {
		if t.Popularity != nil && !window.Contains(*t.Popularity) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// padFromPool appends pool tracks that the filter excluded until the target
// is reached, preserving discovery order and deduplicating against the
// already-selected list.
func padFromPool(selected, pool []EnrichedTrack, limit int) []EnrichedTrack {
	seen := make(map[string]struct{}, len(selected))
	for _, t := range selected {
		if key := t.IdentityKey(); key != "" {
			seen[key] = struct{}{}
		}
	}
	padded := append([]EnrichedTrack(nil), selected...)
	for _, t := range pool {
		if len(padded) >= limit {
			break
		}
		if key := t.IdentityKey(); key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		padded = append(padded, t)
	}
	return padded
}

func windowLabel(w *PopularityWindow) string {
	if w == nil {
		return ""
	}
	return w.Label
}

func windowMin(w *PopularityWindow) *int {
	if w == nil {
		return nil
	}
	min, _ := w.EffectiveBounds()
	return &min
}
