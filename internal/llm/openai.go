package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat-completion backend
// (OpenAI itself, OpenRouter, or a local server speaking the same API).
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// DefaultOpenAIConfig returns gpt-4o-mini with deterministic temperature and
// a 4096-token cap.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{Model: "gpt-4o-mini", Temperature: 0, MaxTokens: 4096}
}

// OpenAIForOpenAI builds a config pointed at OpenAI's own endpoint.
func OpenAIForOpenAI(apiKey, model string) OpenAIConfig {
	c := DefaultOpenAIConfig()
	c.APIKey = apiKey
	c.Model = model
	return c
}

// OpenAIForOpenRouter builds a config pointed at OpenRouter.
func OpenAIForOpenRouter(apiKey, model string) OpenAIConfig {
	c := DefaultOpenAIConfig()
	c.APIKey = apiKey
	c.Model = model
	c.BaseURL = "https://openrouter.ai/api/v1"
	return c
}

// OpenAIForLocal builds a config for a local OpenAI-compatible server; the
// server typically ignores the API key, so a placeholder is used.
func OpenAIForLocal(baseURL, model string) OpenAIConfig {
	c := DefaultOpenAIConfig()
	c.APIKey = "sk-local"
	c.BaseURL = baseURL
	c.Model = model
	return c
}

// OpenAIBackend wraps go-openai's client to satisfy the Backend interface.
type OpenAIBackend struct {
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAIBackend constructs a backend from config.
func NewOpenAIBackend(config OpenAIConfig) (*OpenAIBackend, error) {
	oaiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oaiConfig.BaseURL = config.BaseURL
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(oaiConfig), config: config}, nil
}

func (b *OpenAIBackend) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: b.config.Temperature,
		MaxTokens:   b.config.MaxTokens,
	})
	if err != nil {
		return "", apiErr("%v", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmpty
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *OpenAIBackend) ModelName() string { return b.config.Model }
