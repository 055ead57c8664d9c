package service

import (
	"context"
	"errors"
	"fmt"

	"reviewsBack/internal/auth"
	"reviewsBack/internal/review/captcha"
	"reviewsBack/internal/review/mapid"
	"reviewsBack/internal/review/repo"
	"reviewsBack/internal/review/sentiment"
)

// DefaultMaxLength is the review text limit applied when none is configured.
const DefaultMaxLength = 2000

// Logger provides minimal logging required by the review service.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Store is the persistence the service drives. *repo.Store implements it.
type Store interface {
	ByItem(ctx context.Context, itemID int64, page int) ([]repo.Review, error)
	ByReviewer(ctx context.Context, reviewerID int64, page int) ([]repo.ReviewerReview, error)
	FindOne(ctx context.Context, itemID, reviewerID int64) (repo.Review, error)
	ModerationLog(ctx context.Context, itemID int64, page int) ([]repo.ModLogEntry, error)
	InTx(ctx context.Context, fn func(*repo.Tx) error) error
}

// ListingCache caches map review pages.
type ListingCache interface {
	Get(ctx context.Context, itemID int64, page int) ([]repo.Review, int64, bool, error)
	Put(ctx context.Context, itemID, version int64, page int, reviews []repo.Review) error
	Invalidate(ctx context.Context, itemID int64) error
}

type noCache struct{}

func (noCache) Get(context.Context, int64, int) ([]repo.Review, int64, bool, error) {
	return nil, 0, false, nil
}
func (noCache) Put(context.Context, int64, int64, int, []repo.Review) error { return nil }
func (noCache) Invalidate(context.Context, int64) error                     { return nil }

// Service enforces review ownership, uniqueness and moderation auditing.
type Service struct {
	store     Store
	captcha   captcha.Verifier
	cache     ListingCache
	logger    Logger
	maxLength int
}

// New constructs a Service. A nil cache disables listing caching.
func New(store Store, verifier captcha.Verifier, cache ListingCache, logger Logger, maxLength int) *Service {
	if cache == nil {
		cache = noCache{}
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Service{store: store, captcha: verifier, cache: cache, logger: logger, maxLength: maxLength}
}

// ByItem lists the active reviews of a map identified by its public id.
func (s *Service) ByItem(ctx context.Context, rawItemID string, page int) ([]repo.Review, error) {
	itemID, ok := mapid.Decode(rawItemID)
	if !ok || page < 0 {
		return nil, ErrNotFound
	}

	cached, version, hit, err := s.cache.Get(ctx, itemID, page)
	if err != nil {
		s.logger.Errorf("review cache get item=%d page=%d: %v", itemID, page, err)
	}
	if hit {
		return cached, nil
	}

	reviews, err := s.store.ByItem(ctx, itemID, page)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, itemID, version, page, reviews); err != nil {
		s.logger.Errorf("review cache put item=%d page=%d: %v", itemID, page, err)
	}
	return reviews, nil
}

// ByReviewer lists the active reviews written by reviewerID.
func (s *Service) ByReviewer(ctx context.Context, reviewerID int64, page int) ([]repo.ReviewerReview, error) {
	if reviewerID <= 0 || page < 0 {
		return nil, ErrNotFound
	}
	return s.store.ByReviewer(ctx, reviewerID, page)
}

// Single returns one active review.
func (s *Service) Single(ctx context.Context, rawItemID string, reviewerID int64) (repo.Review, error) {
	itemID, ok := mapid.Decode(rawItemID)
	if !ok {
		return repo.Review{}, ErrNotFound
	}
	rev, err := s.store.FindOne(ctx, itemID, reviewerID)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Review{}, ErrNotFound
	}
	return rev, err
}

// SubmitRequest describes a create or edit of the review (ItemID, ReviewerID).
type SubmitRequest struct {
	ItemID     string
	ReviewerID int64
	Text       string
	Sentiment  sentiment.Sentiment
	// HasToken selects the creating path: the token is verified and the row
	// upserted. Without a token only an existing active review can be edited.
	HasToken     bool
	CaptchaToken string
}

// Submit creates, edits or resurrects a review. Edits by anyone other than
// the author are recorded in the moderation log in the same transaction.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, req SubmitRequest) error {
	itemID, ok := mapid.Decode(req.ItemID)
	if !ok {
		return ErrNotFound
	}
	if err := authorize(actor, req.ReviewerID); err != nil {
		return err
	}
	if err := checkCaptcha(ctx, s.captcha, req.HasToken, req.CaptchaToken); err != nil {
		return err
	}

	text := truncate(req.Text, s.maxLength)
	moderation := actor.ID != req.ReviewerID

	err := s.store.InTx(ctx, func(tx *repo.Tx) error {
		var before repo.Review
		if moderation || !req.HasToken {
			var err error
			before, err = tx.LockActive(ctx, itemID, req.ReviewerID)
			if errors.Is(err, repo.ErrNotFound) {
				if moderation {
					return fmt.Errorf("%w: moderator %d edited missing review item=%d reviewer=%d", ErrInvariantViolation, actor.ID, itemID, req.ReviewerID)
				}
				return ErrNotFound
			}
			if err != nil {
				return err
			}
		}

		if req.HasToken {
			if err := tx.Upsert(ctx, itemID, req.ReviewerID, text, req.Sentiment); err != nil {
				return err
			}
		} else {
			changed, err := tx.UpdateActive(ctx, itemID, req.ReviewerID, text, req.Sentiment)
			if err != nil {
				return err
			}
			if !changed {
				return ErrNotFound
			}
		}

		if !moderation {
			return nil
		}
		entry, err := repo.NewEditEntry(actor.ID, itemID, req.ReviewerID, repo.EditPayload{
			OldSentiment: before.Sentiment,
			NewSentiment: req.Sentiment,
			OldText:      before.Text,
			NewText:      text,
		})
		if err != nil {
			return err
		}
		_, err = tx.AppendModLog(ctx, entry)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			s.logger.Errorf("submit review: %v", err)
		}
		return err
	}

	s.invalidate(ctx, itemID)
	return nil
}

// DeleteRequest describes the removal of the review (ItemID, ReviewerID).
type DeleteRequest struct {
	ItemID     string
	ReviewerID int64
	Reason     string
}

// Delete soft-deletes a review. Deleting a missing or already deleted review
// succeeds without side effects.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, req DeleteRequest) error {
	itemID, ok := mapid.Decode(req.ItemID)
	if !ok {
		return ErrNotFound
	}
	if err := authorize(actor, req.ReviewerID); err != nil {
		return err
	}

	var deleted bool
	err := s.store.InTx(ctx, func(tx *repo.Tx) error {
		var err error
		deleted, err = tx.SoftDelete(ctx, itemID, req.ReviewerID)
		if err != nil || !deleted || actor.ID == req.ReviewerID {
			return err
		}
		entry, err := repo.NewDeleteEntry(actor.ID, itemID, req.ReviewerID, req.Reason)
		if err != nil {
			return err
		}
		_, err = tx.AppendModLog(ctx, entry)
		return err
	})
	if err != nil {
		return err
	}

	if deleted {
		s.invalidate(ctx, itemID)
	}
	return nil
}

// Curate marks or unmarks a review as curated. It reports whether the review
// changed; requesting the state it is already in changes nothing.
func (s *Service) Curate(ctx context.Context, actor auth.Actor, reviewID int64, curated bool) (bool, error) {
	if !actor.IsModerator {
		return false, ErrForbidden
	}

	var (
		changed bool
		itemID  int64
	)
	err := s.store.InTx(ctx, func(tx *repo.Tx) error {
		var err error
		changed, itemID, err = tx.SetCuration(ctx, reviewID, curated)
		return err
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.invalidate(ctx, itemID)
	}
	return changed, nil
}

// ModerationLog lists moderation entries for a map. Moderators only.
func (s *Service) ModerationLog(ctx context.Context, actor auth.Actor, rawItemID string, page int) ([]repo.ModLogEntry, error) {
	if !actor.IsModerator {
		return nil, ErrForbidden
	}
	itemID, ok := mapid.Decode(rawItemID)
	if !ok || page < 0 {
		return nil, ErrNotFound
	}
	return s.store.ModerationLog(ctx, itemID, page)
}

func (s *Service) invalidate(ctx context.Context, itemID int64) {
	if err := s.cache.Invalidate(ctx, itemID); err != nil {
		s.logger.Errorf("review cache invalidate item=%d: %v", itemID, err)
	}
}
