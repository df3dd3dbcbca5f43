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
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2:1b"
	defaultKeepAlive     = "5m"
)

// OllamaClient talks to a local or remote Ollama server for inference
// without an external API dependency.
type OllamaClient struct {
	baseURL   string
	model     string
	keepAlive string
	http      *http.Client
}

func NewOllamaClient(baseURL, model, keepAlive string) *OllamaClient {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	if keepAlive == "" {
		keepAlive = defaultKeepAlive
	}
	return &OllamaClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		model:     model,
		keepAlive: keepAlive,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Format   string        `json:"format,omitempty"`
	Stream   bool          `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
	KeepAlive string `json:"keep_alive,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	DoneReason string `json:"done_reason"`
}

func (c *OllamaClient) chat(ctx context.Context, system, user string, temperature float64, maxTokens int) (content string, doneReason string, err error) {
	payload := ollamaChatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Format:    "json",
		Stream:    false,
		KeepAlive: c.keepAlive,
	}
	payload.Options.Temperature = temperature
	payload.Options.NumPredict = maxTokens

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", &ProviderError{Provider: "ollama", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", "", &ProviderError{Provider: "ollama", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", &ProviderError{Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", &ProviderError{Provider: "ollama", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var parsed ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", &ProviderError{Provider: "ollama", Err: err}
	}
	return parsed.Message.Content, parsed.DoneReason, nil
}

func (c *OllamaClient) AnalyzeMood(ctx context.Context, text string, emojis []string) (recommend.MoodAnalysis, error) {
	prompt := analysisPrompt(text, emojis)

	content, done, err := c.chat(ctx, analysisSystemPrompt, prompt, analysisTemperature, analysisTokens)
	if err != nil {
		return recommend.MoodAnalysis{}, err
	}
	if content == "" || done == "length" {
		log.Printf("moodai: ollama analysis retry (empty or length finish)")
		content, _, err = c.chat(ctx, analysisSystemPrompt, prompt, analysisTemperature, analysisRetryTokens)
		if err != nil {
			return recommend.MoodAnalysis{}, err
		}
	}

	return parseAnalysis(content), nil
}

func (c *OllamaClient) RecommendSongs(ctx context.Context, req recommend.SongRequest) ([]recommend.CandidateSong, error) {
	content, _, err := c.chat(ctx,
		recommendSystemPrompt,
		recommendPrompt(req),
		temperatureFor(req.PopularityLabel),
		recommendTokenBudget(req.Count),
	)
	if err != nil {
		return nil, err
	}

	songs := parseSongs(content, req.Count)
	log.Printf("moodai: ollama returned %d usable song suggestions", len(songs))
	return songs, nil
}

func (c *OllamaClient) TestConnection(ctx context.Context) bool {
	_, _, err := c.chat(ctx, "", "Say 'test successful'", 0, 10)
	return err == nil
}
