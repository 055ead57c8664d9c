package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reviewsBack/internal/review/sentiment"
)

// Review represents the reviews table.
type Review struct {
	ID         int64               `db:"id"`
	ItemID     int64               `db:"item_id"`
	ReviewerID int64               `db:"reviewer_id"`
	Text       string              `db:"text"`
	Sentiment  sentiment.Sentiment `db:"sentiment"`
	CreatedAt  time.Time           `db:"created_at"`
	UpdatedAt  time.Time           `db:"updated_at"`
	CuratedAt  sql.NullTime        `db:"curated_at"`
	DeletedAt  sql.NullTime        `db:"deleted_at"`
}

// ReviewerReview is a review joined with the metadata of the reviewed map.
type ReviewerReview struct {
	Review
	MapName       string `db:"map_name"`
	MapUploaderID int64  `db:"map_uploader_id"`
}

const reviewColumns = `r.id, r.item_id, r.reviewer_id, r.text, r.sentiment, r.created_at, r.updated_at, r.curated_at, r.deleted_at`

// ByItem lists active reviews of a map: curated ones first (most recently
// curated first), then everything else, newest first.
func (s *Store) ByItem(ctx context.Context, itemID int64, page int) ([]Review, error) {
	query := s.db.Rebind(`SELECT ` + reviewColumns + `
FROM reviews r
WHERE r.item_id = ? AND r.deleted_at IS NULL
ORDER BY (r.curated_at IS NULL), r.curated_at DESC, r.created_at DESC, r.id DESC
LIMIT ? OFFSET ?`)

	reviews := []Review{}
	if err := s.db.SelectContext(ctx, &reviews, query, itemID, s.pageSize, s.offset(page)); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ByReviewer lists active reviews written by reviewerID, newest first.
func (s *Store) ByReviewer(ctx context.Context, reviewerID int64, page int) ([]ReviewerReview, error) {
	query := s.db.Rebind(`SELECT ` + reviewColumns + `, m.name AS map_name, m.uploader_id AS map_uploader_id
FROM reviews r
JOIN maps m ON m.id = r.item_id
WHERE r.reviewer_id = ? AND r.deleted_at IS NULL
ORDER BY r.created_at DESC, r.id DESC
LIMIT ? OFFSET ?`)

	reviews := []ReviewerReview{}
	if err := s.db.SelectContext(ctx, &reviews, query, reviewerID, s.pageSize, s.offset(page)); err != nil {
		return nil, err
	}
	return reviews, nil
}

// FindOne returns the active review of reviewerID for itemID.
func (s *Store) FindOne(ctx context.Context, itemID, reviewerID int64) (Review, error) {
	query := s.db.Rebind(`SELECT ` + reviewColumns + `
FROM reviews r
WHERE r.item_id = ? AND r.reviewer_id = ? AND r.deleted_at IS NULL`)

	var rev Review
	if err := s.db.GetContext(ctx, &rev, query, itemID, reviewerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return rev, nil
}

// LockActive reads the active review and locks its row until the transaction ends.
func (t *Tx) LockActive(ctx context.Context, itemID, reviewerID int64) (Review, error) {
	query := t.tx.Rebind(`SELECT ` + reviewColumns + `
FROM reviews r
WHERE r.item_id = ? AND r.reviewer_id = ? AND r.deleted_at IS NULL` + t.store.dialect.lock)

	var rev Review
	if err := t.tx.GetContext(ctx, &rev, query, itemID, reviewerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return rev, nil
}

// Upsert creates the review or replaces the existing row for the same
// (item, reviewer) pair, resurrecting it when soft-deleted.
func (t *Tx) Upsert(ctx context.Context, itemID, reviewerID int64, text string, s sentiment.Sentiment) error {
	now := t.store.now()
	query := t.tx.Rebind(`INSERT INTO reviews (item_id, reviewer_id, text, sentiment, created_at, updated_at, deleted_at)
VALUES (?, ?, ?, ?, ?, ?, NULL)` + t.store.dialect.upsert)

	_, err := t.tx.ExecContext(ctx, query, itemID, reviewerID, text, s.Code(), now, now)
	return err
}

// UpdateActive edits the content of an active review in place.
func (t *Tx) UpdateActive(ctx context.Context, itemID, reviewerID int64, text string, s sentiment.Sentiment) (bool, error) {
	query := t.tx.Rebind(`UPDATE reviews
SET text = ?, sentiment = ?, updated_at = ?
WHERE item_id = ? AND reviewer_id = ? AND deleted_at IS NULL`)

	res, err := t.tx.ExecContext(ctx, query, text, s.Code(), t.store.now(), itemID, reviewerID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// SoftDelete marks the active review deleted. It reports whether a row changed.
func (t *Tx) SoftDelete(ctx context.Context, itemID, reviewerID int64) (bool, error) {
	query := t.tx.Rebind(`UPDATE reviews
SET deleted_at = ?
WHERE item_id = ? AND reviewer_id = ? AND deleted_at IS NULL`)

	res, err := t.tx.ExecContext(ctx, query, t.store.now(), itemID, reviewerID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// SetCuration flips the curated flag of an active review. The update only
// matches when the current state differs from the requested one, so repeated
// requests report no change. itemID is returned for changed rows.
func (t *Tx) SetCuration(ctx context.Context, reviewID int64, curated bool) (changed bool, itemID int64, err error) {
	var res sql.Result
	if curated {
		res, err = t.tx.ExecContext(ctx, t.tx.Rebind(`UPDATE reviews
SET curated_at = ?
WHERE id = ? AND curated_at IS NULL AND deleted_at IS NULL`), t.store.now(), reviewID)
	} else {
		res, err = t.tx.ExecContext(ctx, t.tx.Rebind(`UPDATE reviews
SET curated_at = NULL
WHERE id = ? AND curated_at IS NOT NULL AND deleted_at IS NULL`), reviewID)
	}
	if err != nil {
		return false, 0, err
	}
	changed, err = affected(res)
	if err != nil || !changed {
		return false, 0, err
	}
	if err = t.tx.GetContext(ctx, &itemID, t.tx.Rebind(`SELECT item_id FROM reviews WHERE id = ?`), reviewID); err != nil {
		return false, 0, err
	}
	return true, itemID, nil
}

func affected(res sql.Result) (bool, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
