package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

// AnthropicConfig configures the raw-HTTP Anthropic Messages backend — no
// ecosystem Anthropic client appears anywhere in the retrieved pack, so this
// speaks the documented wire contract directly over net/http.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// NewAnthropicConfig builds a config with max_tokens defaulted to 4096.
func NewAnthropicConfig(apiKey, model string) AnthropicConfig {
	return AnthropicConfig{APIKey: apiKey, Model: model, MaxTokens: 4096}
}

// AnthropicBackend talks to the Anthropic Messages API directly.
type AnthropicBackend struct {
	httpClient *http.Client
	config     AnthropicConfig
}

func NewAnthropicBackend(config AnthropicConfig) (*AnthropicBackend, error) {
	return &AnthropicBackend{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		config:     config,
	}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicContentBlock struct {
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

func (b *AnthropicBackend) Generate(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     b.config.Model,
		MaxTokens: b.config.MaxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", apiErr("encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", apiErr("building request: %v", err)
	}
	req.Header.Set("x-api-key", b.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("content-type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", apiErr("%v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &Error{Kind: ErrRateLimited}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiErr("anthropic API error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apiErr("decoding response: %v", err)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return "", ErrEmpty
	}
	return parsed.Content[0].Text, nil
}

func (b *AnthropicBackend) ModelName() string { return b.config.Model }
