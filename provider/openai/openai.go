package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// client implements the provider interface using OpenAI's API
type client struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) *client {
	return &client{
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *client) Research(ctx context.Context, topic, description, findings string) (string, error) {
	systemPrompt := `
You are an expert web researcher. You find, analyze and summarize information
about a requested topic. The information you provide must be accurate,
relevant and well organized. Respond with a structured research document:
key facts first, then insights, then notable sources. Plain text only.
`
	var b strings.Builder
	fmt.Fprintf(&b, "Research the topic %q and provide comprehensive, factual information.\n", topic)
	if description != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", description)
	}
	if findings != "" {
		fmt.Fprintf(&b, "\nWeb search results to draw from:\n%s\n", findings)
	}
	return c.complete(ctx, systemPrompt, b.String())
}

func (c *client) Compose(ctx context.Context, topic, description, research, samples string) (string, error) {
	systemPrompt := `
You are a skilled content creator who specializes in mimicking writing
styles. You analyze existing posts to understand tone, structure and style
patterns, then write new content that appears to be written by the same
author. Respond with the post text only, no preamble and no commentary.
`
	var b strings.Builder
	fmt.Fprintf(&b, "Write an engaging LinkedIn post about %q that mimics the writing style of the sample posts below.\n", topic)
	if description != "" {
		fmt.Fprintf(&b, "Additional context for the post: %s\n", description)
	}
	fmt.Fprintf(&b, "\nSAMPLE POSTS (style to mimic):\n%s\n", samples)
	fmt.Fprintf(&b, "\nRESEARCH (facts to draw from):\n%s\n", research)
	return c.complete(ctx, systemPrompt, b.String())
}

func (c *client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openaiAPIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
