package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	LinkedIn LinkedInConfig `mapstructure:"linkedin"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Search   SearchConfig   `mapstructure:"search"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Listen   string `mapstructure:"listen"`
}

// LinkedInConfig contains credentials, the target profile, and every pacing
// knob the scraper honours.
type LinkedInConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Profile  string `mapstructure:"profile"`

	Headless   bool   `mapstructure:"headless"`
	ChromePath string `mapstructure:"chrome_path"`

	// Randomized delay bounds per interaction kind.
	DelayMin     time.Duration `mapstructure:"delay_min"`
	DelayMax     time.Duration `mapstructure:"delay_max"`
	KeystrokeMin time.Duration `mapstructure:"keystroke_min"`
	KeystrokeMax time.Duration `mapstructure:"keystroke_max"`
	ScrollMin    time.Duration `mapstructure:"scroll_min"`
	ScrollMax    time.Duration `mapstructure:"scroll_max"`

	// Fixed page-load settle periods.
	ShortWait  time.Duration `mapstructure:"short_wait"`
	MediumWait time.Duration `mapstructure:"medium_wait"`
	LongWait   time.Duration `mapstructure:"long_wait"`

	// Grace window for a human to resolve a security challenge.
	SecurityWait time.Duration `mapstructure:"security_wait"`

	// Per-section item caps.
	MaxFeatured  int `mapstructure:"max_featured"`
	MaxArticles  int `mapstructure:"max_articles"`
	MaxPosts     int `mapstructure:"max_posts"`
	ScrollPasses int `mapstructure:"scroll_passes"`
}

func (l LinkedInConfig) Validate() error {
	if strings.TrimSpace(l.Profile) == "" {
		return fmt.Errorf("linkedin.profile is required")
	}
	if l.DelayMax < l.DelayMin || l.KeystrokeMax < l.KeystrokeMin || l.ScrollMax < l.ScrollMin {
		return fmt.Errorf("linkedin delay ranges must have max >= min")
	}
	return nil
}

// LLMConfig contains the language model provider settings.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SearchConfig contains web search settings for the research step.
type SearchConfig struct {
	Provider     string `mapstructure:"provider"`
	SerperAPIKey string `mapstructure:"serper_api_key"`
	BraveAPIKey  string `mapstructure:"brave_api_key"`
	MaxResults   int    `mapstructure:"max_results"`
}

// APIKey returns the key for the configured provider.
func (s SearchConfig) APIKey() string {
	if s.Provider == "brave" {
		return s.BraveAPIKey
	}
	return s.SerperAPIKey
}

// StorageConfig contains storage settings. Redis is optional; without it the
// post cache lives in process memory.
type StorageConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a Redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

func (r RedisConfig) Addr() string {
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", r.Host, port)
}

// CacheConfig controls the scraped-posts cache and its refresh behaviour.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	// Cron expression for periodic background refresh; empty disables it.
	RefreshCron string `mapstructure:"refresh_cron"`
	// Minimum interval between scrapes; requests beyond it are rejected
	// rather than queued.
	MinScrapeInterval time.Duration `mapstructure:"min_scrape_interval"`
}

// LoadConfig loads config from file, with DOPPEL_* environment variables
// taking precedence. A missing config file is fine: defaults plus
// environment cover everything.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.listen", ":8001")
	viper.SetDefault("general.log_level", "info")

	// Secrets normally arrive via DOPPEL_* env vars; registering the keys
	// with empty defaults keeps AutomaticEnv and Unmarshal in agreement.
	viper.SetDefault("linkedin.email", "")
	viper.SetDefault("linkedin.password", "")
	viper.SetDefault("linkedin.profile", "")
	viper.SetDefault("linkedin.chrome_path", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("search.serper_api_key", "")
	viper.SetDefault("search.brave_api_key", "")
	viper.SetDefault("storage.redis.host", "")
	viper.SetDefault("storage.redis.port", "")
	viper.SetDefault("storage.redis.password", "")
	viper.SetDefault("cache.refresh_cron", "")

	viper.SetDefault("linkedin.headless", true)
	viper.SetDefault("linkedin.delay_min", time.Second)
	viper.SetDefault("linkedin.delay_max", 3*time.Second)
	viper.SetDefault("linkedin.keystroke_min", 50*time.Millisecond)
	viper.SetDefault("linkedin.keystroke_max", 150*time.Millisecond)
	viper.SetDefault("linkedin.scroll_min", 800*time.Millisecond)
	viper.SetDefault("linkedin.scroll_max", 1500*time.Millisecond)
	viper.SetDefault("linkedin.short_wait", 5*time.Second)
	viper.SetDefault("linkedin.medium_wait", 7*time.Second)
	viper.SetDefault("linkedin.long_wait", 8*time.Second)
	viper.SetDefault("linkedin.security_wait", 5*time.Second)
	viper.SetDefault("linkedin.max_featured", 10)
	viper.SetDefault("linkedin.max_articles", 5)
	viper.SetDefault("linkedin.max_posts", 7)
	viper.SetDefault("linkedin.scroll_passes", 5)

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.timeout", 120*time.Second)

	viper.SetDefault("search.provider", "serper")
	viper.SetDefault("search.max_results", 5)

	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("cache.min_scrape_interval", time.Minute)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("DOPPEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &config
}
