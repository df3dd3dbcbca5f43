package moodai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

const analysisSystemPrompt = "You are a concise music mood analyzer. Always return valid JSON with an 'analysis' object only."

const recommendSystemPrompt = "You are a music expert recommender. Use provided analysis and always return valid JSON with a 'songs' array only."

func emojiContext(emojis []string) string {
	if len(emojis) == 0 {
		return "No emoji tags provided by the user."
	}
	return fmt.Sprintf("Emoji tags selected by the user: [%s]. Use them as mood/energy/activity cues.", strings.Join(emojis, ", "))
}

func analysisPrompt(text string, emojis []string) string {
	return fmt.Sprintf(`Analyze the mood and constraints for this music request: %q
%s

Return ONLY valid JSON:
{
  "analysis": {
    "mood": "1-4 words mood or vibe",
    "matched_criteria": ["genre: ...", "artist: ...", "activity: ..."]
  }
}

Rules: keep it concise, infer mood from text/emojis, include genre/artist/activity tags when present, no extra text.`,
		text, emojiContext(emojis))
}

func recommendPrompt(req recommend.SongRequest) string {
	analysisJSON, err := json.Marshal(req.Analysis)
	if err != nil {
		analysisJSON = []byte("{}")
	}

	var popularityHint string
	switch {
	case req.PopularityLabel != "" || req.MinPopularity != nil:
		low := 0
		if req.MinPopularity != nil {
			low = *req.MinPopularity
		}
		high := low + 20
		if high > 100 {
			high = 100
		}
		popularityHint = fmt.Sprintf(" Aim for the requested popularity band: %q (around Spotify %d-%d). Do NOT over-index on chart-toppers if the band is lower.",
			req.PopularityLabel, low, high)
	default:
		popularityHint = " Popularity is open; you may choose any songs."
	}

	return fmt.Sprintf(`User request: %q
%s
Prior analysis JSON: %s

Using that analysis, suggest exactly %d songs available on Spotify.
Prioritize the mood/criteria first, then any explicit genres or artists.%s

Return ONLY valid JSON:
{
  "songs": [
    {"title": "Song Title", "artist": "Artist Name", "why": "super short reason", "matched_criteria": ["genre: ...", "artist: ..."]},
    {"title": "Another Song", "artist": "Another Artist"}
  ]
}

Rules: keep 'why' brief, keep matched_criteria as short tags, no extra text.`,
		req.Text, emojiContext(req.Emojis), analysisJSON, req.Count, popularityHint)
}
