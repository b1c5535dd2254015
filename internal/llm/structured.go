// ABOUTME: Schema-constrained generation with JSON-only prompting
// ABOUTME: Falls back to free-text generation when the output fails to parse
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docquery/internal/models"
	"docquery/internal/util"
)

const structuredSystemPrompt = `You are a helpful assistant that always responds with valid JSON.
The response must match the following JSON schema exactly:

%s

Return only the JSON object, without any additional text or markdown formatting.`

// GenerateStructured asks the model for JSON conforming to the given schema.
// The schema is serialized into a system prompt and the response is decoded
// after stripping any incidental code fences. When decoding fails the
// question is retried as plain generation and the result carries the raw
// fallback text with Parsed set to false; only transport failures surface as
// errors.
func (c *Client) GenerateStructured(prompt string, schema map[string]interface{}) (models.StructuredResult, error) {
	schemaDesc, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return models.StructuredResult{}, fmt.Errorf("serializing response schema: %w", err)
	}
	systemPrompt := fmt.Sprintf(structuredSystemPrompt, schemaDesc)

	raw, err := c.chatWithSystem(systemPrompt, prompt)
	if err != nil {
		return models.StructuredResult{}, err
	}

	cleaned := stripCodeFence(raw)
	var object map[string]interface{}
	jsonErr := json.Unmarshal([]byte(cleaned), &object)
	if jsonErr == nil {
		return models.StructuredResult{Parsed: true, Object: object}, nil
	}
	log.Printf("Structured response was not valid JSON, falling back to plain generation: %v", jsonErr)

	fallback, err := c.Generate(prompt)
	if err != nil {
		return models.StructuredResult{}, err
	}
	return models.StructuredResult{Parsed: false, Raw: fallback}, nil
}

// chatWithSystem runs one chat completion with a system and a user message,
// with the client's usual retry behavior.
func (c *Client) chatWithSystem(systemPrompt, userPrompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
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

	return "", fmt.Errorf("failed to generate structured completion after %d attempts: %w", c.maxRetries+1, lastErr)
}

// stripCodeFence removes a wrapping markdown code fence, with or without a
// language tag, that some models add around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	body := strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line, if any
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		first := strings.TrimSpace(body[:idx])
		if first == "" || isLanguageTag(first) {
			body = body[idx+1:]
		}
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}
