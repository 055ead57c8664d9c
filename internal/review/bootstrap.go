package review

import (
	"context"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"reviewsBack/internal/review/cache"
	"reviewsBack/internal/review/captcha"
	reviewhttp "reviewsBack/internal/review/http"
	"reviewsBack/internal/review/repo"
	"reviewsBack/internal/review/service"
)

// RegisterReviewRoutes wires the review HTTP handlers into mux behind chain.
// It reports whether the module was enabled; a disabled module registers
// nothing and touches no dependency.
func RegisterReviewRoutes(ctx context.Context, mux *pat.PatternServeMux, chain alice.Chain, deps *Deps) (bool, error) {
	if deps != nil && !deps.Config.Enabled {
		return false, nil
	}
	if err := deps.Validate(); err != nil {
		return false, err
	}
	cfg := deps.Config

	store, err := repo.NewStore(deps.DB, cfg.PageSize)
	if err != nil {
		return false, err
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return false, err
		}
	}

	var verifier captcha.Verifier = captcha.NewClient(deps.HTTPClient, cfg.CaptchaSecret, cfg.CaptchaVerifyURL)
	if cfg.CaptchaDisabled {
		deps.Logger.Infof("reviews: captcha verification disabled")
		verifier = captcha.Static(true)
	}

	var listings service.ListingCache
	if deps.Redis != nil {
		listings = cache.NewRedis(deps.Redis, cfg.CacheTTL)
	}

	svc := service.New(store, verifier, listings, deps.Logger, cfg.MaxLength)
	reviewhttp.NewServer(deps.Logger, svc).Register(mux, chain)
	deps.Logger.Infof("reviews: routes registered (driver=%s, cache=%t)", deps.DB.DriverName(), deps.Redis != nil)
	return true, nil
}
