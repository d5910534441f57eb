package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/maturity-report/internal/infra/ai/prompt"
)

// Options configure the chat-completion call.
type Options struct {
	// Endpoint is the Azure OpenAI endpoint; empty targets api.openai.com.
	Endpoint        string
	APIKey          string
	Deployment      string
	Temperature     float32
	MaxOutputTokens int
}

// Client implements report.Analyzer against a chat-completion endpoint.
type Client struct {
	api  *openai.Client
	opts Options
}

func NewClient(opts Options) *Client {
	if opts.Deployment == "" {
		opts.Deployment = "gpt-4o"
	}
	var api *openai.Client
	if opts.Endpoint != "" {
		cfg := openai.DefaultAzureConfig(opts.APIKey, opts.Endpoint)
		api = openai.NewClientWithConfig(cfg)
	} else {
		api = openai.NewClient(opts.APIKey)
	}
	return &Client{api: api, opts: opts}
}

// Analyze sends the document text with the analysis prompt in JSON mode and
// returns the raw completion. Schema validation happens in the orchestrator.
func (c *Client) Analyze(ctx context.Context, documentText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.opts.Deployment,
		Temperature: c.opts.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(documentText)},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens
	model := c.opts.Deployment
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = c.opts.MaxOutputTokens
	} else {
		req.MaxTokens = c.opts.MaxOutputTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return content, nil
}
