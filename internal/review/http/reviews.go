package http

import (
	"net/http"

	"reviewsBack/internal/auth"
	"reviewsBack/internal/review/service"
)

func (s *Server) handleByItem(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(r)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	reviews, err := s.reviews.ByItem(ctx, r.URL.Query().Get(":id"), page)
	if err != nil {
		s.writeServiceError(w, "list map reviews", err)
		return
	}
	out := make([]itemReview, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, toItemReview(rev))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": out})
}

func (s *Server) handleByReviewer(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := parseUserID(r.URL.Query().Get(":id"))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	page, ok := parsePage(r)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	reviews, err := s.reviews.ByReviewer(ctx, reviewerID, page)
	if err != nil {
		s.writeServiceError(w, "list user reviews", err)
		return
	}
	out := make([]reviewerReview, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, toReviewerReview(rev))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": out})
}

func (s *Server) handleSingle(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := parseUserID(r.URL.Query().Get(":userId"))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	rev, err := s.reviews.Single(ctx, r.URL.Query().Get(":mapId"), reviewerID)
	if err != nil {
		s.writeServiceError(w, "get review", err)
		return
	}
	writeJSON(w, http.StatusOK, toSingleReview(rev))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	reviewerID, ok := parseUserID(r.URL.Query().Get(":userId"))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req submitRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Sentiment == nil {
		writeError(w, http.StatusBadRequest, "sentiment is required")
		return
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	submit := service.SubmitRequest{
		ItemID:     r.URL.Query().Get(":mapId"),
		ReviewerID: reviewerID,
		Text:       req.Text,
		Sentiment:  *req.Sentiment,
	}
	if req.Captcha != nil {
		submit.HasToken = true
		submit.CaptchaToken = *req.Captcha
	}
	if err := s.reviews.Submit(ctx, actor, submit); err != nil {
		s.writeServiceError(w, "submit review", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	reviewerID, ok := parseUserID(r.URL.Query().Get(":userId"))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req deleteRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	err := s.reviews.Delete(ctx, actor, service.DeleteRequest{
		ItemID:     r.URL.Query().Get(":mapId"),
		ReviewerID: reviewerID,
		Reason:     req.Reason,
	})
	if err != nil {
		s.writeServiceError(w, "delete review", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCurate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req curateRequest
	if err := decodeBody(r, &req, false); err != nil || req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	updated, err := s.reviews.Curate(ctx, actor, req.ID, req.Curated)
	if err != nil {
		s.writeServiceError(w, "curate review", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

func (s *Server) handleModerationLog(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	page, ok := parsePage(r)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	entries, err := s.reviews.ModerationLog(ctx, actor, r.URL.Query().Get(":mapId"), page)
	if err != nil {
		s.writeServiceError(w, "moderation log", err)
		return
	}
	out := make([]modLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toModLogEntry(e))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": out})
}
