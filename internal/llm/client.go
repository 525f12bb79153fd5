// Package llm probes OpenAI-compatible chat endpoints. One Client covers
// OpenAI, Mistral, Together and local servers; the differences between them
// are only the base URL, key and model id injected at construction.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Response holds one probe outcome.
type Response struct {
	// Text is the model's reply, with surrounding whitespace preserved.
	Text string

	// Latency is the wall-clock duration of the API call.
	Latency time.Duration

	TokensInput  int
	TokensOutput int
	TokensTotal  int
}

// Prober sends a single prompt to a model and reports the reply.
type Prober interface {
	Probe(ctx context.Context, prompt string) (*Response, error)

	// ModelName is the stable name results are tracked under.
	ModelName() string

	// ModelID is the identifier sent to the vendor API.
	ModelID() string
}

// Client implements Prober over any OpenAI-compatible API.
type Client struct {
	api       *openai.Client
	name      string
	modelID   string
	maxTokens int
}

// NewClient builds a Client. The name identifies the model in results and
// reports; the API model id defaults to the name when not set explicitly.
func NewClient(name string, opts ...Option) *Client {
	cfg := &clientConfig{
		apiKey:    "not-needed",
		modelID:   name,
		maxTokens: 1000,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	config := openai.DefaultConfig(cfg.apiKey)
	if cfg.baseURL != "" {
		config.BaseURL = cfg.baseURL
	}

	return &Client{
		api:       openai.NewClientWithConfig(config),
		name:      name,
		modelID:   cfg.modelID,
		maxTokens: cfg.maxTokens,
	}
}

// ModelName returns the name the model is tracked under.
func (c *Client) ModelName() string {
	return c.name
}

// ModelID returns the id sent to the API.
func (c *Client) ModelID() string {
	return c.modelID
}

// Probe sends the prompt as a single user message at temperature zero, so
// repeated probes are as deterministic as the endpoint allows.
func (c *Client) Probe(ctx context.Context, prompt string) (*Response, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	})
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("probe %s: no choices returned", c.name)
	}

	return &Response{
		Text:         resp.Choices[0].Message.Content,
		Latency:      latency,
		TokensInput:  resp.Usage.PromptTokens,
		TokensOutput: resp.Usage.CompletionTokens,
		TokensTotal:  resp.Usage.TotalTokens,
	}, nil
}
