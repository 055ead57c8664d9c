package service

import "errors"

var (
	// ErrNotFound covers undecodable identifiers and missing reviews.
	ErrNotFound = errors.New("reviews: not found")
	// ErrForbidden means the actor may not act on the target review.
	ErrForbidden = errors.New("reviews: forbidden")
	// ErrCaptchaRejected means the supplied CAPTCHA token did not verify.
	ErrCaptchaRejected = errors.New("reviews: captcha rejected")
	// ErrInvariantViolation means stored state contradicts what the operation
	// requires, which points at a bug or a race rather than bad input.
	ErrInvariantViolation = errors.New("reviews: invariant violation")
)
