package moodai

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

// Parsing and salvage for raw model output. Providers return whatever text
// the model produced; everything stringly-typed stays in this file so the
// rest of the system only ever sees validated structures.

type analysisEnvelope struct {
	Analysis recommend.MoodAnalysis `json:"analysis"`
}

type songsEnvelope struct {
	Songs []recommend.CandidateSong `json:"songs"`
}

// parseAnalysis extracts a MoodAnalysis from raw model text. Malformed
// content degrades to an empty analysis; it is advisory, not load-bearing.
func parseAnalysis(raw string) recommend.MoodAnalysis {
	text := stripCodeFences(raw)

	var env analysisEnvelope
	if err := json.Unmarshal([]byte(text), &env); err == nil {
		return env.Analysis
	}

	// the model sometimes wraps the object in prose; try the first balanced
	// {...} substring before giving up
	if sub, ok := firstBalancedObject(text); ok {
		if err := json.Unmarshal([]byte(sub), &env); err == nil {
			return env.Analysis
		}
	}

	log.Printf("moodai: could not parse analysis response, returning empty analysis")
	return recommend.MoodAnalysis{}
}

// parseSongs extracts candidate songs from raw model text. On parse failure
// it salvages the payload back to the last complete song object; whatever
// was recovered is returned, possibly nothing. Songs missing a title or
// artist are skipped and duplicates within the response are dropped.
func parseSongs(raw string, count int) []recommend.CandidateSong {
	text := stripCodeFences(raw)

	var env songsEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		log.Printf("moodai: songs JSON parse failed, trimming to last complete song: %v", err)
		repaired := salvageToLastCompleteSong(text)
		if err := json.Unmarshal([]byte(repaired), &env); err != nil {
			log.Printf("moodai: songs JSON salvage failed: %v", err)
			return nil
		}
	}

	valid := make([]recommend.CandidateSong, 0, len(env.Songs))
	seen := make(map[string]struct{}, len(env.Songs))
	for _, song := range env.Songs {
		if strings.TrimSpace(song.Title) == "" || strings.TrimSpace(song.Artist) == "" {
			continue
		}
		key := song.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, song)
		if count > 0 && len(valid) >= count {
			break
		}
	}
	return valid
}

func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

// firstBalancedObject returns the first {...} substring with balanced
// braces, ignoring braces inside JSON strings.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// salvageToLastCompleteSong trims truncated output back to the last
// complete object inside the songs array and closes the JSON.
func salvageToLastCompleteSong(text string) string {
	lastBrace := strings.LastIndexByte(text, '}')
	if lastBrace == -1 {
		return text
	}

	text = text[:lastBrace+1]
	text = strings.TrimRight(text, ", \n\r\t")

	if strings.Contains(text, `"songs"`) && strings.Contains(text, "[") && !hasClosedEnding(text) {
		text += "\n  ]\n}"
	}
	return text
}

func hasClosedEnding(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasSuffix(trimmed, "]") ||
		strings.HasSuffix(trimmed, "]}") ||
		strings.HasSuffix(trimmed, "}}")
}
