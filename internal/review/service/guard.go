package service

import (
	"context"
	"fmt"

	"reviewsBack/internal/auth"
	"reviewsBack/internal/review/captcha"
)

// authorize allows authors to act on their own review and moderators on any.
func authorize(actor auth.Actor, reviewerID int64) error {
	if actor.ID == reviewerID || actor.IsModerator {
		return nil
	}
	return ErrForbidden
}

// checkCaptcha verifies the token when the client sent one.
func checkCaptcha(ctx context.Context, v captcha.Verifier, hasToken bool, token string) error {
	if !hasToken {
		return nil
	}
	ok, err := v.Verify(ctx, token)
	if err != nil {
		return fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		return ErrCaptchaRejected
	}
	return nil
}

// truncate cuts text to at most max runes.
func truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}
