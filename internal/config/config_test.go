package config

import (
	"testing"
	"time"
)

// TestLoad_Defaults tests the built-in defaults
func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "PROVIDER_TYPE", "PROVIDER_TIMEOUT", "CACHE_TTL", "CORS_ALLOWED_ORIGINS", "PROXY_PROTOCOL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Port)
	}
	if cfg.ProviderType != "ipinfo" {
		t.Errorf("expected provider ipinfo, got %s", cfg.ProviderType)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.ProviderTimeout)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("expected 1h cache TTL, got %v", cfg.CacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("expected wildcard CORS origin, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ProxyProtocol {
		t.Error("expected PROXY protocol to be off by default")
	}
}

// TestLoad_FromEnvironment tests overriding values
func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PROVIDER_TYPE", "mmdb")
	t.Setenv("PROVIDER_TIMEOUT", "3")
	t.Setenv("CACHE_TTL", "0")
	t.Setenv("PROXY_PROTOCOL", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.ProviderType != "mmdb" {
		t.Errorf("expected provider mmdb, got %s", cfg.ProviderType)
	}
	if cfg.ProviderTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.ProviderTimeout)
	}
	if cfg.CacheTTL != 0 {
		t.Errorf("expected no cache TTL, got %v", cfg.CacheTTL)
	}
	if !cfg.ProxyProtocol {
		t.Error("expected PROXY protocol to be on")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("expected redis db 2, got %d", cfg.RedisDB)
	}
}

// TestGetEnvHelpers_InvalidValues tests fallbacks for unparsable values
func TestGetEnvHelpers_InvalidValues(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_SECONDS", "-5")
	t.Setenv("TEST_LIST", " , ,")

	if got := getEnvAsInt("TEST_INT", 7); got != 7 {
		t.Errorf("expected default 7, got %d", got)
	}
	if got := getEnvAsBool("TEST_BOOL", true); !got {
		t.Error("expected default true")
	}
	if got := getEnvAsSeconds("TEST_SECONDS", time.Minute); got != time.Minute {
		t.Errorf("expected default 1m, got %v", got)
	}
	if got := getEnvAsList("TEST_LIST", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Errorf("expected default list, got %v", got)
	}
}
