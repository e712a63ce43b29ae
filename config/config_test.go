package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")

	if cfg.General.Listen != ":8001" {
		t.Fatalf("listen: %q", cfg.General.Listen)
	}
	if !cfg.LinkedIn.Headless {
		t.Fatalf("headless should default to true")
	}
	if cfg.LinkedIn.DelayMin != time.Second || cfg.LinkedIn.DelayMax != 3*time.Second {
		t.Fatalf("delay bounds: %v / %v", cfg.LinkedIn.DelayMin, cfg.LinkedIn.DelayMax)
	}
	if cfg.LinkedIn.MaxPosts != 7 || cfg.LinkedIn.ScrollPasses != 5 {
		t.Fatalf("section caps: %+v", cfg.LinkedIn)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("llm defaults: %+v", cfg.LLM)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Fatalf("cache ttl: %v", cfg.Cache.TTL)
	}
	if cfg.Storage.Redis.Enabled() {
		t.Fatalf("redis should be disabled without a host")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DOPPEL_LINKEDIN_PROFILE", "jane-doe")
	t.Setenv("DOPPEL_GENERAL_LISTEN", ":9000")

	cfg := LoadConfig("")
	if cfg.LinkedIn.Profile != "jane-doe" {
		t.Fatalf("profile: %q", cfg.LinkedIn.Profile)
	}
	if cfg.General.Listen != ":9000" {
		t.Fatalf("listen: %q", cfg.General.Listen)
	}
}

func TestLinkedInConfigValidate(t *testing.T) {
	l := LinkedInConfig{Profile: "jane-doe", DelayMin: time.Second, DelayMax: 2 * time.Second}
	if err := l.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	if err := (LinkedInConfig{}).Validate(); err == nil {
		t.Fatalf("missing profile accepted")
	}

	l.DelayMax = time.Millisecond
	if err := l.Validate(); err == nil {
		t.Fatalf("inverted delay range accepted")
	}
}

func TestRedisAddrDefaultsPort(t *testing.T) {
	r := RedisConfig{Host: "cache.internal"}
	if got := r.Addr(); got != "cache.internal:6379" {
		t.Fatalf("addr: %q", got)
	}
	r.Port = "6380"
	if got := r.Addr(); got != "cache.internal:6380" {
		t.Fatalf("addr: %q", got)
	}
}
