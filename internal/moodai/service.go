package moodai

import (
	"context"
	"fmt"
	"strings"

	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

// Service is an AI completion backend able to analyze a mood request and
// suggest songs for it. Implementations must only fail on total provider
// failure (network, auth, quota, timeout); malformed model output degrades
// to empty results.
type Service interface {
	AnalyzeMood(ctx context.Context, text string, emojis []string) (recommend.MoodAnalysis, error)
	RecommendSongs(ctx context.Context, req recommend.SongRequest) ([]recommend.CandidateSong, error)
	TestConnection(ctx context.Context) bool
}

// ProviderError marks a total AI provider failure.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Config selects and configures the concrete provider.
type Config struct {
	Provider string // "gemini" or "ollama"

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	OllamaBaseURL string
	OllamaModel   string
	KeepAlive     string
}

// NewService builds the provider named by cfg.Provider.
func NewService(cfg Config) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("moodai: gemini provider selected but no API key configured")
		}
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel), nil
	case "ollama":
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.KeepAlive), nil
	default:
		return nil, fmt.Errorf("moodai: unknown AI provider %q, must be 'gemini' or 'ollama'", cfg.Provider)
	}
}

// Token and temperature policy shared by both providers. Analysis only
// needs a short structured summary; recommendations scale with the song
// count but never past the hard cap.
const (
	analysisTokens      = 512
	analysisRetryTokens = 1024
	analysisTemperature = 0.4

	recommendBaseTokens    = 2000
	recommendPerSongTokens = 160
	recommendTokenCap      = 12000

	recommendTemperature       = 0.8
	recommendLowPopTemperature = 0.9
)

func recommendTokenBudget(count int) int {
	budget := recommendBaseTokens + count*recommendPerSongTokens
	if budget > recommendTokenCap {
		budget = recommendTokenCap
	}
	return budget
}

func temperatureFor(popularityLabel string) float64 {
	if recommend.IsLowPopularityTier(popularityLabel) {
		return recommendLowPopTemperature
	}
	return recommendTemperature
}
