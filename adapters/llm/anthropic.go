package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"datasense/ports"
)

// AnthropicClient implements LLMClient on the Anthropic Messages API
type AnthropicClient struct {
	client      anthropic.Client
	temperature float64
}

func newAnthropicClient(config Config) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing Anthropic API key")
	}
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}
	if base := strings.TrimSpace(config.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &AnthropicClient{
		client:      anthropic.NewClient(opts...),
		temperature: config.Temperature,
	}, nil
}

func (c *AnthropicClient) ChatCompletion(ctx context.Context, model, system, prompt string, maxTokens int) (string, error) {
	resp, err := c.ChatCompletionWithUsage(ctx, model, system, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *AnthropicClient) ChatCompletionWithUsage(ctx context.Context, model, system, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("missing model")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if system == "" {
		system = defaultSystemPrompt
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(c.temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("anthropic response missing text content")
	}

	in, out := int(message.Usage.InputTokens), int(message.Usage.OutputTokens)
	return &ports.LLMResponse{
		Content: b.String(),
		Usage: &ports.UsageData{
			PromptTokens:     in,
			CompletionTokens: out,
			TotalTokens:      in + out,
			Model:            model,
			Provider:         ProviderAnthropic,
		},
	}, nil
}
