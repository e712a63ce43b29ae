package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/doppel/config"
	"github.com/mohammad-safakhou/doppel/tools/linkedin"
	"github.com/mohammad-safakhou/doppel/tools/linkedin/session"
)

func scrapeCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the configured LinkedIn profile once and print the posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg := config.LoadConfig(cfgPath)
			if err := cfg.LinkedIn.Validate(); err != nil {
				return err
			}

			scraper := linkedin.New(scraperConfig(cfg), log.New(log.Writer(), "[SCRAPER] ", log.LstdFlags))
			fmt.Println(scraper.Scrape(cmd.Context()))
			return nil
		},
	}
}

func scraperConfig(cfg *config.Config) linkedin.Config {
	li := cfg.LinkedIn
	return linkedin.Config{
		Email:      li.Email,
		Password:   li.Password,
		Profile:    li.Profile,
		Headless:   li.Headless,
		ChromePath: li.ChromePath,
		Pacing: session.Pacing{
			ActionMin:    li.DelayMin,
			ActionMax:    li.DelayMax,
			KeystrokeMin: li.KeystrokeMin,
			KeystrokeMax: li.KeystrokeMax,
			ScrollMin:    li.ScrollMin,
			ScrollMax:    li.ScrollMax,
		},
		Waits: session.Waits{
			Short:         li.ShortWait,
			Medium:        li.MediumWait,
			Long:          li.LongWait,
			SecurityGrace: li.SecurityWait,
		},
		MaxArticles:  li.MaxArticles,
		MaxFeatured:  li.MaxFeatured,
		MaxPosts:     li.MaxPosts,
		ScrollPasses: li.ScrollPasses,
	}
}
