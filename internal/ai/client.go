package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Responder is the AI collaborator contract: mention auto-replies and content
// moderation. Both calls are best-effort for their callers.
type Responder interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
	Moderate(ctx context.Context, content string) (bool, error)
}

// Client talks to any OpenAI-compatible endpoint (hosted or a local runner).
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// GenerateReply answers a free-form prompt; used for bot-mention replies.
func (c *Client) GenerateReply(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Moderate reports whether content violates guidelines. Fails open: callers
// get (false, err) on transport errors and decide themselves.
func (c *Client) Moderate(ctx context.Context, content string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: `Respond only with "Yes" if harmful (hate, violence, illegal), else "No".`},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
		Temperature: 0.1,
		MaxTokens:   5,
	})
	if err != nil {
		return false, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return false, fmt.Errorf("no response choices")
	}

	verdict := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	return strings.Contains(verdict, "yes"), nil
}
