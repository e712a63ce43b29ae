package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mohammad-safakhou/doppel/provider"
	"github.com/mohammad-safakhou/doppel/tools/web_search"
)

// Result is the output of one generation run.
type Result struct {
	Research string `json:"research_result"`
	Post     string `json:"generated_post"`
}

// Orchestrator runs the two-step generation pipeline: research a topic, then
// compose a post mimicking the sample posts' writing style.
type Orchestrator struct {
	LLM        provider.Provider
	Search     web_search.WebSearcher // optional
	MaxResults int
	Logger     *log.Logger
}

func NewOrchestrator(llm provider.Provider, search web_search.WebSearcher, maxResults int, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Orchestrator{LLM: llm, Search: search, MaxResults: maxResults, Logger: logger}
}

// GeneratePost researches the topic and writes a post in the voice of the
// numbered sample posts. Search failures are soft: the research step still
// runs on the model's own knowledge.
func (o *Orchestrator) GeneratePost(ctx context.Context, topic, description, samples string) (Result, error) {
	findings := o.discover(ctx, topic)

	research, err := o.LLM.Research(ctx, topic, description, findings)
	if err != nil {
		return Result{}, fmt.Errorf("research step: %w", err)
	}

	post, err := o.LLM.Compose(ctx, topic, description, research, samples)
	if err != nil {
		return Result{}, fmt.Errorf("compose step: %w", err)
	}
	return Result{Research: research, Post: post}, nil
}

func (o *Orchestrator) discover(ctx context.Context, topic string) string {
	if o.Search == nil {
		return ""
	}
	results, err := o.Search.Discover(ctx, topic, o.MaxResults)
	if err != nil {
		o.Logger.Printf("web search failed, continuing without findings: %v", err)
		return ""
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "- %s (%s)\n  %s\n", r.Title, r.URL, r.Snippet)
	}
	return b.String()
}
