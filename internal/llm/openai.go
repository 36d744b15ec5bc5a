package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

type openAIClient struct {
	api   *openai.Client
	model string
}

// NewOpenAIClient creates a chat-completion client against any
// OpenAI-compatible endpoint (Groq, OpenAI, a local proxy). The base URL
// can be overridden via LLM_BASE_URL.
func NewOpenAIClient(apiKey, model string) Client {
	cfg := openai.DefaultConfig(apiKey)
	if base := os.Getenv("LLM_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	return &openAIClient{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *openAIClient) ChatCompletion(ctx context.Context, messages []Message, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return "", ErrModelNotConfigured
	}

	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		//a 404 on the model name is a configuration fault, not a transport one
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %q rejected by provider: %v", ErrModelNotConfigured, model, err)
		}
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from chat completion API")
	}

	return resp.Choices[0].Message.Content, nil
}
