package http

import (
	"encoding/json"
	"time"

	"reviewsBack/internal/review/mapid"
	"reviewsBack/internal/review/repo"
	"reviewsBack/internal/review/sentiment"
)

// itemReview is a review shown on a map page. The reviewer is not exposed.
type itemReview struct {
	ID        int64               `json:"id"`
	MapID     string              `json:"map_id"`
	Text      string              `json:"text"`
	Sentiment sentiment.Sentiment `json:"sentiment"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	CuratedAt *time.Time          `json:"curated_at,omitempty"`
}

// reviewerReview is a review shown on a reviewer's profile.
type reviewerReview struct {
	ID            int64               `json:"id"`
	ReviewerID    int64               `json:"reviewer_id"`
	MapID         string              `json:"map_id"`
	MapName       string              `json:"map_name,omitempty"`
	MapUploaderID int64               `json:"map_uploader_id,omitempty"`
	Text          string              `json:"text"`
	Sentiment     sentiment.Sentiment `json:"sentiment"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	CuratedAt     *time.Time          `json:"curated_at,omitempty"`
}

type modLogEntry struct {
	EventID    string          `json:"event_id"`
	ActorID    int64           `json:"actor_id"`
	MapID      string          `json:"map_id"`
	ReviewerID int64           `json:"reviewer_id"`
	Action     string          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

type submitRequest struct {
	Text      string               `json:"text"`
	Sentiment *sentiment.Sentiment `json:"sentiment"`
	Captcha   *string              `json:"captcha"`
}

type deleteRequest struct {
	Reason string `json:"reason"`
}

type curateRequest struct {
	ID      int64 `json:"id"`
	Curated bool  `json:"curated"`
}

func toItemReview(r repo.Review) itemReview {
	return itemReview{
		ID:        r.ID,
		MapID:     mapid.Encode(r.ItemID),
		Text:      r.Text,
		Sentiment: r.Sentiment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		CuratedAt: nullTimeToPtr(r.CuratedAt),
	}
}

func toReviewerReview(r repo.ReviewerReview) reviewerReview {
	out := toSingleReview(r.Review)
	out.MapName = r.MapName
	out.MapUploaderID = r.MapUploaderID
	return out
}

func toSingleReview(r repo.Review) reviewerReview {
	return reviewerReview{
		ID:         r.ID,
		ReviewerID: r.ReviewerID,
		MapID:      mapid.Encode(r.ItemID),
		Text:       r.Text,
		Sentiment:  r.Sentiment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		CuratedAt:  nullTimeToPtr(r.CuratedAt),
	}
}

func toModLogEntry(e repo.ModLogEntry) modLogEntry {
	return modLogEntry{
		EventID:    e.EventID,
		ActorID:    e.ActorID,
		MapID:      mapid.Encode(e.ItemID),
		ReviewerID: e.ReviewerID,
		Action:     e.Action,
		Payload:    json.RawMessage(e.Payload),
		CreatedAt:  e.CreatedAt,
	}
}
