package review

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CAPTCHA_SECRET", "s3cret")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Enabled || cfg.MaxLength != 2000 || cfg.PageSize != 20 || cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("REVIEWS_ENABLED", "false")
	t.Setenv("REVIEWS_MAX_LENGTH", "140")
	t.Setenv("REVIEWS_PAGE_SIZE", "7")
	t.Setenv("REVIEWS_CACHE_TTL_SECONDS", "30")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Enabled || cfg.MaxLength != 140 || cfg.PageSize != 7 || cfg.CacheTTL != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"REVIEWS_ENABLED":    "maybe",
		"REVIEWS_MAX_LENGTH": "0",
		"REVIEWS_PAGE_SIZE":  "abc",
		// pages would outlive the cache version counter
		"REVIEWS_CACHE_TTL_SECONDS": "86400",
	}
	for name, val := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("CAPTCHA_DISABLED", "true")
			t.Setenv(name, val)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %s=%s", name, val)
			}
		})
	}
}

func TestLoadConfigRequiresCaptchaSecret(t *testing.T) {
	t.Setenv("CAPTCHA_SECRET", "")
	t.Setenv("CAPTCHA_DISABLED", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected missing secret error")
	}
}
