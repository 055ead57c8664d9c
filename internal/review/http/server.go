package http

import (
	"errors"
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"reviewsBack/internal/review/service"
)

// Logger captures the logging contract required by the server.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Server provides HTTP handlers for map reviews.
type Server struct {
	logger  Logger
	reviews *service.Service
}

// NewServer constructs a Server instance.
func NewServer(logger Logger, reviews *service.Service) *Server {
	return &Server{logger: logger, reviews: reviews}
}

// Register mounts review routes on the mux behind chain.
func (s *Server) Register(mux *pat.PatternServeMux, chain alice.Chain) {
	mux.Get("/api/review/map/:id/:page", chain.ThenFunc(s.handleByItem))
	mux.Get("/api/review/map/:id", chain.ThenFunc(s.handleByItem))
	mux.Get("/api/review/user/:id/:page", chain.ThenFunc(s.handleByReviewer))
	mux.Get("/api/review/user/:id", chain.ThenFunc(s.handleByReviewer))

	mux.Get("/api/review/single/:mapId/:userId", chain.ThenFunc(s.handleSingle))
	mux.Put("/api/review/single/:mapId/:userId", chain.ThenFunc(s.handleSubmit))
	mux.Del("/api/review/single/:mapId/:userId", chain.ThenFunc(s.handleDelete))

	mux.Post("/api/review/curate", chain.ThenFunc(s.handleCurate))
	mux.Get("/api/review/modlog/:mapId/:page", chain.ThenFunc(s.handleModerationLog))
	mux.Get("/api/review/modlog/:mapId", chain.ThenFunc(s.handleModerationLog))
}

// writeServiceError maps service errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "review not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrCaptchaRejected):
		writeError(w, http.StatusBadRequest, "captcha verification failed")
	default:
		s.logger.Errorf("%s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
