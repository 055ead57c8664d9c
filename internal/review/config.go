package review

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"reviewsBack/internal/review/cache"
)

const (
	defaultMaxLength = 2000
	defaultPageSize  = 20
	defaultCacheTTL  = 5 * time.Minute
)

// Config holds runtime configuration for the review module.
type Config struct {
	// Enabled is the feature gate. It is read once at startup; a disabled
	// module registers no routes.
	Enabled          bool
	AutoMigrate      bool
	MaxLength        int
	PageSize         int
	CacheTTL         time.Duration
	CaptchaSecret    string
	CaptchaVerifyURL string
	// CaptchaDisabled accepts every token. Meant for local development.
	CaptchaDisabled bool
}

// LoadConfig reads review configuration from environment variables and applies defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		Enabled:     true,
		AutoMigrate: true,
		MaxLength:   defaultMaxLength,
		PageSize:    defaultPageSize,
		CacheTTL:    defaultCacheTTL,
	}

	if v, err := readBoolEnv("REVIEWS_ENABLED"); err != nil {
		return Config{}, fmt.Errorf("parse REVIEWS_ENABLED: %w", err)
	} else if v != nil {
		cfg.Enabled = *v
	}

	if v, err := readBoolEnv("REVIEWS_AUTO_MIGRATE"); err != nil {
		return Config{}, fmt.Errorf("parse REVIEWS_AUTO_MIGRATE: %w", err)
	} else if v != nil {
		cfg.AutoMigrate = *v
	}

	if v, err := readIntEnv("REVIEWS_MAX_LENGTH"); err != nil {
		return Config{}, fmt.Errorf("parse REVIEWS_MAX_LENGTH: %w", err)
	} else if v != nil {
		cfg.MaxLength = *v
	}

	if v, err := readIntEnv("REVIEWS_PAGE_SIZE"); err != nil {
		return Config{}, fmt.Errorf("parse REVIEWS_PAGE_SIZE: %w", err)
	} else if v != nil {
		cfg.PageSize = *v
	}

	if v := os.Getenv("REVIEWS_CACHE_TTL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse REVIEWS_CACHE_TTL_SECONDS: %w", err)
		}
		cfg.CacheTTL = time.Duration(secs) * time.Second
	}

	cfg.CaptchaSecret = strings.TrimSpace(os.Getenv("CAPTCHA_SECRET"))
	cfg.CaptchaVerifyURL = strings.TrimSpace(os.Getenv("CAPTCHA_VERIFY_URL"))
	if v, err := readBoolEnv("CAPTCHA_DISABLED"); err != nil {
		return Config{}, fmt.Errorf("parse CAPTCHA_DISABLED: %w", err)
	} else if v != nil {
		cfg.CaptchaDisabled = *v
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxLength <= 0 {
		return fmt.Errorf("REVIEWS_MAX_LENGTH must be positive")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("REVIEWS_PAGE_SIZE must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("REVIEWS_CACHE_TTL_SECONDS must be positive")
	}
	if c.CacheTTL >= cache.VersionTTL {
		return fmt.Errorf("REVIEWS_CACHE_TTL_SECONDS must be below %d", int(cache.VersionTTL/time.Second))
	}
	if c.Enabled && !c.CaptchaDisabled && c.CaptchaSecret == "" {
		return fmt.Errorf("CAPTCHA_SECRET is required unless CAPTCHA_DISABLED is set")
	}
	return nil
}

func readIntEnv(name string) (*int, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readBoolEnv(name string) (*bool, error) {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(val)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
