package main

import (
	"context"
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"reviewsBack/internal/review"
)

func (app *application) routes(ctx context.Context, reviewDeps *review.Deps) (http.Handler, error) {
	standardMiddleware := alice.New(app.recoverPanic, app.requestID, app.logRequest, secureHeaders, makeResponseJSON)
	apiMiddleware := alice.New(app.authenticate)

	mux := pat.New()
	mux.Get("/healthz", http.HandlerFunc(app.healthz))

	enabled, err := review.RegisterReviewRoutes(ctx, mux, apiMiddleware, reviewDeps)
	if err != nil {
		return nil, err
	}
	if !enabled {
		app.infoLog.Printf("Reviews are disabled, review routes not registered")
	}

	return standardMiddleware.Then(mux), nil
}

func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
