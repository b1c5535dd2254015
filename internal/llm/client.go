// ABOUTME: OpenAI-compatible client for embeddings and answer generation
// ABOUTME: Works against OpenAI or a local Ollama endpoint via OPENAI_BASE_URL
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docquery/internal/config"
	"docquery/internal/util"
)

// Client wraps the OpenAI API client with retry logic. The same client
// serves both the embedder and the generator roles.
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// New creates a client from configuration. An API key is required unless a
// custom base URL is set (local Ollama endpoints accept any key).
func New(cfg *config.Config) (*Client, error) {
	apiKey := cfg.OpenAIKey
	if apiKey == "" {
		if cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when no OPENAI_BASE_URL is set")
		}
		apiKey = "local"
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &Client{
		client:         openai.NewClientWithConfig(clientCfg),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// EmbedDocuments generates one embedding vector per input text in a single
// batch call.
func (c *Client) EmbedDocuments(texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.embeddingModel,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) != len(texts) {
			lastErr = fmt.Errorf("attempt %d: got %d embeddings for %d texts", attempt+1, len(resp.Data), len(texts))
			continue
		}

		vectors := make([][]float64, len(resp.Data))
		for i, d := range resp.Data {
			vec := make([]float64, len(d.Embedding))
			for j, v := range d.Embedding {
				vec[j] = float64(v)
			}
			vectors[i] = vec
		}
		return vectors, nil
	}

	return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", c.maxRetries+1, lastErr)
}

// EmbedQuery generates the embedding for a single query string.
func (c *Client) EmbedQuery(text string) ([]float64, error) {
	vectors, err := c.EmbedDocuments([]string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Generate produces a free-text completion for the prompt.
func (c *Client) Generate(prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("failed to generate completion after %d attempts: %w", c.maxRetries+1, lastErr)
}
