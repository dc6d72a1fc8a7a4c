package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

// maxInFlight bounds concurrently outstanding provider requests to respect
// provider rate limits; excess requests queue on the semaphore.
const maxInFlight = 3

// Config carries the chat-completion provider settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	AppURL  string
	AppName string
	Timeout time.Duration
}

// Available reports whether the provider is configured at all. When it is
// not, classification is a silent no-op.
func (c Config) Available() bool {
	return c.APIKey != "" && c.Model != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatClient issues chat-completion requests to an OpenRouter-compatible
// endpoint, gated by the in-flight semaphore.
type chatClient struct {
	cfg  Config
	http *http.Client
	sem  *semaphore.Weighted
}

func newChatClient(cfg Config) *chatClient {
	return &chatClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		sem:  semaphore.NewWeighted(maxInFlight),
	}
}

// complete sends one system+user exchange and returns the first choice's
// content. Transport errors, non-2xx statuses, and empty payloads all come
// back as errors for the caller to swallow.
func (c *chatClient) complete(ctx context.Context, system, user string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire request slot: %w", err)
	}
	defer c.sem.Release(1)

	payload := chatRequest{
		Model:       c.cfg.Model,
		Temperature: 0,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.AppURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.AppURL)
	}
	if c.cfg.AppName != "" {
		req.Header.Set("X-Title", c.cfg.AppName)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}
