package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	appconfig "github.com/mohammad-safakhou/doppel/config"
	"github.com/mohammad-safakhou/doppel/internal/agent"
	"github.com/mohammad-safakhou/doppel/internal/cache"
	"github.com/mohammad-safakhou/doppel/internal/index"
	"github.com/mohammad-safakhou/doppel/provider"
	"github.com/mohammad-safakhou/doppel/tools/linkedin"
	"github.com/mohammad-safakhou/doppel/tools/web_search"
)

// Run wires every dependency and serves the API until the listener fails.
func Run(cfg *appconfig.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if err := cfg.LinkedIn.Validate(); err != nil {
		return err
	}

	// Post cache: redis when configured, otherwise in-process.
	var postCache cache.Cache
	if cfg.Storage.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:        cfg.Storage.Redis.Addr(),
			Password:    cfg.Storage.Redis.Password,
			DB:          cfg.Storage.Redis.DB,
			DialTimeout: cfg.Storage.Redis.Timeout,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s): %w", cfg.Storage.Redis.Addr(), err)
		}
		postCache = cache.NewRedis(rdb, cfg.Cache.TTL)
	} else {
		baseLogger.Printf("redis not configured, using in-memory post cache")
		postCache = cache.NewMemory(cfg.Cache.TTL)
	}

	idx, err := index.New()
	if err != nil {
		return fmt.Errorf("creating search index: %w", err)
	}

	scraper := linkedin.New(linkedinConfigFromApp(cfg), log.New(log.Writer(), "[SCRAPER] ", log.LstdFlags))

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
		searcher, err = web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey())
		if err != nil {
			return err
		}
	} else {
		baseLogger.Printf("no search api key configured, research runs without web findings")
	}
	orch := agent.NewOrchestrator(llm, searcher, cfg.Search.MaxResults, nil)

	api := e.Group("/api")

	ph := &PostsHandler{
		Scraper: scraper,
		Cache:   postCache,
		Index:   idx,
		Limiter: rate.NewLimiter(rate.Every(cfg.Cache.MinScrapeInterval), 1),
		Profile: cfg.LinkedIn.Profile,
		Logger:  log.New(log.Writer(), "[POSTS] ", log.LstdFlags),
	}
	ph.Register(api.Group("/linkedin"))

	gh := &GenerateHandler{Posts: ph, Generator: orch}
	gh.Register(api.Group("/generate"))

	if cfg.Cache.RefreshCron != "" {
		sched, err := NewScheduler(cfg.Cache.RefreshCron, ph)
		if err != nil {
			return fmt.Errorf("cache.refresh_cron: %w", err)
		}
		sched.Start()
		defer sched.Shutdown()
	}

	addr := cfg.General.Listen
	if addr == "" {
		addr = ":8001"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

func linkedinConfigFromApp(cfg *appconfig.Config) linkedin.Config {
	li := cfg.LinkedIn
	out := linkedin.Config{
		Email:        li.Email,
		Password:     li.Password,
		Profile:      li.Profile,
		Headless:     li.Headless,
		ChromePath:   li.ChromePath,
		MaxArticles:  li.MaxArticles,
		MaxFeatured:  li.MaxFeatured,
		MaxPosts:     li.MaxPosts,
		ScrollPasses: li.ScrollPasses,
	}
	out.Pacing.ActionMin = li.DelayMin
	out.Pacing.ActionMax = li.DelayMax
	out.Pacing.KeystrokeMin = li.KeystrokeMin
	out.Pacing.KeystrokeMax = li.KeystrokeMax
	out.Pacing.ScrollMin = li.ScrollMin
	out.Pacing.ScrollMax = li.ScrollMax
	out.Waits.Short = li.ShortWait
	out.Waits.Medium = li.MediumWait
	out.Waits.Long = li.LongWait
	out.Waits.SecurityGrace = li.SecurityWait
	return out
}
