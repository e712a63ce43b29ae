package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/doppel/config"
	"github.com/mohammad-safakhou/doppel/internal/agent"
	"github.com/mohammad-safakhou/doppel/provider"
	"github.com/mohammad-safakhou/doppel/tools/linkedin"
	"github.com/mohammad-safakhou/doppel/tools/web_search"
)

func generateCMD() *cobra.Command {
	var topic, description string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a post about a topic in the scraped profile's writing style",
		RunE: func(cmd *cobra.Command, args []string) error {
			if topic == "" {
				return errors.New("--topic is required")
			}
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg := config.LoadConfig(cfgPath)
			if err := cfg.LinkedIn.Validate(); err != nil {
				return err
			}

			llm, err := provider.NewProvider(provider.Client(cfg.LLM.Provider), provider.Settings{
				APIKey:      cfg.LLM.APIKey,
				Model:       cfg.LLM.Model,
				Temperature: cfg.LLM.Temperature,
				MaxTokens:   cfg.LLM.MaxTokens,
				Timeout:     cfg.LLM.Timeout,
			})
			if err != nil {
				return err
			}
			var searcher web_search.WebSearcher
			if cfg.Search.APIKey() != "" {
				if searcher, err = web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey()); err != nil {
					return err
				}
			}

			scraper := linkedin.New(scraperConfig(cfg), log.New(log.Writer(), "[SCRAPER] ", log.LstdFlags))
			samples := scraper.Scrape(cmd.Context())

			orch := agent.NewOrchestrator(llm, searcher, cfg.Search.MaxResults, nil)
			result, err := orch.GeneratePost(cmd.Context(), topic, description, samples)
			if err != nil {
				return err
			}

			fmt.Println("=== RESEARCH ===")
			fmt.Println(result.Research)
			fmt.Println()
			fmt.Println("=== GENERATED POST ===")
			fmt.Println(result.Post)
			return nil
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "topic to write about")
	cmd.Flags().StringVarP(&description, "description", "d", "", "additional context for the post")
	return cmd
}
