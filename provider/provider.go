package provider

import (
	"context"
	"errors"
	"time"

	openai_provider "github.com/mohammad-safakhou/doppel/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Provider is the language-model surface the generation pipeline depends on:
// send a prompt, receive text. Nothing about the scrape leaks in here.
type Provider interface {
	// Research produces a factual write-up about a topic; findings is
	// pre-rendered web search material, possibly empty.
	Research(ctx context.Context, topic, description, findings string) (string, error)
	// Compose writes a post about the topic in the voice demonstrated by
	// the numbered sample posts.
	Compose(ctx context.Context, topic, description, research, samples string) (string, error)
}

// Settings configures a provider instance.
type Settings struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(client Client, s Settings) (Provider, error) {
	switch client {
	case OpenAI:
		if s.APIKey == "" {
			return nil, errors.New("openai api key not configured")
		}
		if s.Model == "" {
			s.Model = "gpt-4o-mini"
		}
		if s.Timeout <= 0 {
			s.Timeout = 60 * time.Second
		}
		return openai_provider.NewOpenAIClient(s.APIKey, s.Model, s.Temperature, s.MaxTokens, s.Timeout), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
