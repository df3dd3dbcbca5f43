package moodai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultGeminiModel   = "gemini-2.5-flash"
)

// GeminiClient talks to Gemini through its OpenAI-compatible chat
// completions endpoint.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

func NewGeminiClient(apiKey, baseURL, model string) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *GeminiClient) complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (content string, finishReason string, err error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", &ProviderError{Provider: "gemini", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", "", &ProviderError{Provider: "gemini", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", &ProviderError{Provider: "gemini", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", &ProviderError{Provider: "gemini", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", &ProviderError{Provider: "gemini", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", "", nil
	}
	return parsed.Choices[0].Message.Content, parsed.Choices[0].FinishReason, nil
}

// AnalyzeMood asks for the short structured mood summary. One retry with a
// bigger token budget when the first response came back empty or truncated.
func (c *GeminiClient) AnalyzeMood(ctx context.Context, text string, emojis []string) (recommend.MoodAnalysis, error) {
	prompt := analysisPrompt(text, emojis)

	content, finish, err := c.complete(ctx, analysisSystemPrompt, prompt, analysisTemperature, analysisTokens)
	if err != nil {
		return recommend.MoodAnalysis{}, err
	}
	if content == "" || finish == "length" {
		log.Printf("moodai: gemini analysis retry (content missing or length finish)")
		content, _, err = c.complete(ctx, analysisSystemPrompt, prompt, analysisTemperature, analysisRetryTokens)
		if err != nil {
			return recommend.MoodAnalysis{}, err
		}
	}

	return parseAnalysis(content), nil
}

// RecommendSongs asks for candidate songs. Malformed or truncated output is
// salvaged; only transport-level failure is an error.
func (c *GeminiClient) RecommendSongs(ctx context.Context, req recommend.SongRequest) ([]recommend.CandidateSong, error) {
	content, _, err := c.complete(ctx,
		recommendSystemPrompt,
		recommendPrompt(req),
		temperatureFor(req.PopularityLabel),
		recommendTokenBudget(req.Count),
	)
	if err != nil {
		return nil, err
	}

	songs := parseSongs(content, req.Count)
	log.Printf("moodai: gemini returned %d usable song suggestions", len(songs))
	return songs, nil
}

// TestConnection verifies the endpoint is reachable with the configured key.
func (c *GeminiClient) TestConnection(ctx context.Context) bool {
	_, _, err := c.complete(ctx, "", "Say 'test successful'", 0, 10)
	return err == nil
}
