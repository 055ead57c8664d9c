package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reviewsBack/internal/review/sentiment"
)

// Moderation log actions.
const (
	ActionReviewEdit   = "review_edit"
	ActionReviewDelete = "review_delete"
)

// ModLogEntry represents the moderation_log table. Entries are append-only.
type ModLogEntry struct {
	ID         int64     `db:"id"`
	EventID    string    `db:"event_id"`
	ActorID    int64     `db:"actor_id"`
	ItemID     int64     `db:"item_id"`
	ReviewerID int64     `db:"reviewer_id"`
	Action     string    `db:"action"`
	Payload    string    `db:"payload"`
	CreatedAt  time.Time `db:"created_at"`
}

// EditPayload records a moderator's change to someone else's review.
type EditPayload struct {
	OldSentiment sentiment.Sentiment `json:"old_sentiment"`
	NewSentiment sentiment.Sentiment `json:"new_sentiment"`
	OldText      string              `json:"old_text"`
	NewText      string              `json:"new_text"`
}

// DeletePayload records why a moderator removed a review.
type DeletePayload struct {
	Reason string `json:"reason"`
}

// NewEditEntry builds a review_edit entry.
func NewEditEntry(actorID, itemID, reviewerID int64, p EditPayload) (ModLogEntry, error) {
	return newEntry(actorID, itemID, reviewerID, ActionReviewEdit, p)
}

// NewDeleteEntry builds a review_delete entry.
func NewDeleteEntry(actorID, itemID, reviewerID int64, reason string) (ModLogEntry, error) {
	return newEntry(actorID, itemID, reviewerID, ActionReviewDelete, DeletePayload{Reason: reason})
}

func newEntry(actorID, itemID, reviewerID int64, action string, payload interface{}) (ModLogEntry, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ModLogEntry{}, fmt.Errorf("encode %s payload: %w", action, err)
	}
	return ModLogEntry{
		EventID:    uuid.NewString(),
		ActorID:    actorID,
		ItemID:     itemID,
		ReviewerID: reviewerID,
		Action:     action,
		Payload:    string(body),
	}, nil
}

// Edit decodes the payload of a review_edit entry.
func (e ModLogEntry) Edit() (EditPayload, error) {
	var p EditPayload
	if e.Action != ActionReviewEdit {
		return p, fmt.Errorf("entry %s is %s, not %s", e.EventID, e.Action, ActionReviewEdit)
	}
	err := json.Unmarshal([]byte(e.Payload), &p)
	return p, err
}

// Delete decodes the payload of a review_delete entry.
func (e ModLogEntry) Delete() (DeletePayload, error) {
	var p DeletePayload
	if e.Action != ActionReviewDelete {
		return p, fmt.Errorf("entry %s is %s, not %s", e.EventID, e.Action, ActionReviewDelete)
	}
	err := json.Unmarshal([]byte(e.Payload), &p)
	return p, err
}

// AppendModLog writes entry inside the transaction and returns its stored id.
func (t *Tx) AppendModLog(ctx context.Context, entry ModLogEntry) (int64, error) {
	if entry.EventID == "" {
		entry.EventID = uuid.NewString()
	}
	query := t.tx.Rebind(`INSERT INTO moderation_log (event_id, actor_id, item_id, reviewer_id, action, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`)

	if _, err := t.tx.ExecContext(ctx, query, entry.EventID, entry.ActorID, entry.ItemID, entry.ReviewerID, entry.Action, entry.Payload, t.store.now()); err != nil {
		return 0, err
	}
	var id int64
	if err := t.tx.GetContext(ctx, &id, t.tx.Rebind(`SELECT id FROM moderation_log WHERE event_id = ?`), entry.EventID); err != nil {
		return 0, err
	}
	return id, nil
}

// ModerationLog lists moderation entries about reviews of itemID, newest first.
func (s *Store) ModerationLog(ctx context.Context, itemID int64, page int) ([]ModLogEntry, error) {
	query := s.db.Rebind(`SELECT id, event_id, actor_id, item_id, reviewer_id, action, payload, created_at
FROM moderation_log
WHERE item_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`)

	entries := []ModLogEntry{}
	if err := s.db.SelectContext(ctx, &entries, query, itemID, s.pageSize, s.offset(page)); err != nil {
		return nil, err
	}
	return entries, nil
}
