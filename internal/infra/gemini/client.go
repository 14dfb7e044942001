package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shlee-lab/telegram-simple-llm-bot/internal/domain"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel   = "gemini-1.5-flash"
)

// Client sends single-turn prompts to Gemini.
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	api *openai.Client
}

func NewClient(apiKey string, opts ...func(*Client)) *Client {
	c := &Client{
		BaseURL:    DefaultBaseURL,
		Model:      DefaultModel,
		HTTPClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(c.BaseURL, "/")
	cfg.HTTPClient = c.HTTPClient
	c.api = openai.NewClientWithConfig(cfg)
	return c
}

func WithBaseURL(baseURL string) func(*Client) {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.BaseURL = baseURL
		}
	}
}

func WithModel(model string) func(*Client) {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.Model = model
		}
	}
}

// WithHTTPClient replaces the transport. The call deadline comes from ctx,
// so hc normally carries no Timeout of its own.
func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// Generate sends prompt as the only user message, with no system prompt and
// no history, and returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("gemini client is not initialized")
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", c.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gemini %s: no candidates: %w", c.Model, domain.ErrEmptyCompletion)
	}
	choice := resp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("gemini %s: finish reason %q: %w", c.Model, choice.FinishReason, domain.ErrEmptyCompletion)
	}
	return choice.Message.Content, nil
}
