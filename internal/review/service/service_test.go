package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"reviewsBack/internal/auth"
	"reviewsBack/internal/review/captcha"
	"reviewsBack/internal/review/mapid"
	"reviewsBack/internal/review/repo"
	"reviewsBack/internal/review/sentiment"
)

type stubLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *stubLogger) Infof(string, ...interface{}) {}

func (l *stubLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

type spyCache struct {
	mu          sync.Mutex
	pages       map[string][]repo.Review
	invalidated []int64
}

func newSpyCache() *spyCache {
	return &spyCache{pages: map[string][]repo.Review{}}
}

func (c *spyCache) key(itemID int64, page int) string {
	return fmt.Sprintf("%d/%d", itemID, page)
}

func (c *spyCache) Get(_ context.Context, itemID int64, page int) ([]repo.Review, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[c.key(itemID, page)]
	return p, 0, ok, nil
}

func (c *spyCache) Put(_ context.Context, itemID, _ int64, page int, reviews []repo.Review) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[c.key(itemID, page)] = reviews
	return nil
}

func (c *spyCache) Invalidate(_ context.Context, itemID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, itemID)
	for k := range c.pages {
		if strings.HasPrefix(k, fmt.Sprintf("%d/", itemID)) {
			delete(c.pages, k)
		}
	}
	return nil
}

type fixture struct {
	svc    *Service
	store  *repo.Store
	cache  *spyCache
	logger *stubLogger
}

func newFixture(t *testing.T, verifier captcha.Verifier, maxLength int) *fixture {
	t.Helper()
	return newFixtureDSN(t, ":memory:", verifier, maxLength)
}

func newFixtureDSN(t *testing.T, dsn string, verifier captcha.Verifier, maxLength int) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := repo.Open(ctx, "sqlite", dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := repo.NewStore(db, 20)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	store.WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	})
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	f := &fixture{store: store, cache: newSpyCache(), logger: &stubLogger{}}
	f.svc = New(store, verifier, f.cache, f.logger, maxLength)
	return f
}

const (
	itemID  int64 = 42
	authorA int64 = 100
	modB    int64 = 200
)

var (
	rawItem   = mapid.Encode(itemID)
	actorA    = auth.Actor{ID: authorA, Role: "user"}
	moderator = auth.Actor{ID: modB, Role: "admin", IsModerator: true}
)

func (f *fixture) create(t *testing.T, actor auth.Actor, reviewer int64, text string, s sentiment.Sentiment) {
	t.Helper()
	err := f.svc.Submit(context.Background(), actor, SubmitRequest{
		ItemID: rawItem, ReviewerID: reviewer, Text: text, Sentiment: s,
		HasToken: true, CaptchaToken: "ok",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestAuthorModeratorScenario(t *testing.T) {
	f := newFixture(t, captcha.Static(true), 0)
	ctx := context.Background()

	f.create(t, actorA, authorA, "Great", sentiment.Positive)

	err := f.svc.Submit(ctx, moderator, SubmitRequest{
		ItemID: rawItem, ReviewerID: authorA, Text: "[redacted]", Sentiment: sentiment.Positive,
	})
	if err != nil {
		t.Fatalf("moderator edit: %v", err)
	}

	rev, err := f.svc.Single(ctx, rawItem, authorA)
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	if rev.Text != "[redacted]" || rev.ReviewerID != authorA {
		t.Fatalf("unexpected review after moderation: %+v", rev)
	}

	log, err := f.svc.ModerationLog(ctx, moderator, rawItem, 0)
	if err != nil {
		t.Fatalf("ModerationLog: %v", err)
	}
	if len(log) != 1 || log[0].Action != repo.ActionReviewEdit || log[0].ActorID != modB || log[0].ReviewerID != authorA {
		t.Fatalf("unexpected log %+v", log)
	}
	edit, err := log[0].Edit()
	if err != nil {
		t.Fatalf("Edit payload: %v", err)
	}
	if edit.OldText != "Great" || edit.NewText != "[redacted]" || edit.OldSentiment != sentiment.Positive || edit.NewSentiment != sentiment.Positive {
		t.Fatalf("unexpected diff %+v", edit)
	}

	if err := f.svc.Delete(ctx, actorA, DeleteRequest{ItemID: rawItem, ReviewerID: authorA}); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := f.svc.Single(ctx, rawItem, authorA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	log, _ = f.svc.ModerationLog(ctx, moderator, rawItem, 0)
	if len(log) != 1 {
		t.Fatalf("self delete must not be logged, log has %d entries", len(log))
	}

	f.create(t, actorA, authorA, "Actually OK", sentiment.Neutral)
	rev, err = f.svc.Single(ctx, rawItem, authorA)
	if err != nil {
		t.Fatalf("Single after resurrection: %v", err)
	}
	if rev.Text != "Actually OK" || rev.Sentiment != sentiment.Neutral || rev.DeletedAt.Valid {
		t.Fatalf("unexpected resurrected review %+v", rev)
	}

	listing, err := f.svc.ByItem(ctx, rawItem, 0)
	if err != nil {
		t.Fatalf("ByItem: %v", err)
	}
	if len(listing) != 1 {
		t.Fatalf("expected exactly one active review, got %d", len(listing))
	}
}

func TestSubmitTruncatesText(t *testing.T) {
	f := newFixture(t, captcha.Static(true), 5)
	f.create(t, actorA, authorA, "abcdefgh", sentiment.Neutral)

	rev, err := f.svc.Single(context.Background(), rawItem, authorA)
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	if rev.Text != "abcde" {
		t.Fatalf("text = %q, want %q", rev.Text, "abcde")
	}
}

func TestSubmitRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("undecodable item", func(t *testing.T) {
		f := newFixture(t, captcha.Static(true), 0)
		err := f.svc.Submit(ctx, actorA, SubmitRequest{ItemID: "zz", ReviewerID: authorA, HasToken: true})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("stranger", func(t *testing.T) {
		f := newFixture(t, captcha.Static(true), 0)
		err := f.svc.Submit(ctx, auth.Actor{ID: 999}, SubmitRequest{ItemID: rawItem, ReviewerID: authorA, HasToken: true})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("captcha rejected", func(t *testing.T) {
		f := newFixture(t, captcha.Static(false), 0)
		err := f.svc.Submit(ctx, actorA, SubmitRequest{ItemID: rawItem, ReviewerID: authorA, Text: "x", HasToken: true, CaptchaToken: "bad"})
		if !errors.Is(err, ErrCaptchaRejected) {
			t.Fatalf("expected ErrCaptchaRejected, got %v", err)
		}
		if _, err := f.svc.Single(ctx, rawItem, authorA); !errors.Is(err, ErrNotFound) {
			t.Fatalf("rejected submit must not write, got %v", err)
		}
	})

	t.Run("first write without token", func(t *testing.T) {
		f := newFixture(t, captcha.Static(true), 0)
		err := f.svc.Submit(ctx, actorA, SubmitRequest{ItemID: rawItem, ReviewerID: authorA, Text: "x"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("moderator edits missing review", func(t *testing.T) {
		f := newFixture(t, captcha.Static(true), 0)
		err := f.svc.Submit(ctx, moderator, SubmitRequest{ItemID: rawItem, ReviewerID: authorA, Text: "x"})
		if !errors.Is(err, ErrInvariantViolation) {
			t.Fatalf("expected ErrInvariantViolation, got %v", err)
		}
		if len(f.logger.errors) != 1 {
			t.Fatalf("invariant violation should be logged once, got %v", f.logger.errors)
		}
		log, _ := f.svc.ModerationLog(ctx, moderator, rawItem, 0)
		if len(log) != 0 {
			t.Fatalf("failed edit must not leave a log entry, got %+v", log)
		}
	})
}

func TestSubmitWithoutTokenEditsInPlace(t *testing.T) {
	f := newFixture(t, captcha.Static(true), 0)
	ctx := context.Background()
	f.create(t, actorA, authorA, "first", sentiment.Negative)
	before, _ := f.svc.Single(ctx, rawItem, authorA)

	err := f.svc.Submit(ctx, actorA, SubmitRequest{ItemID: rawItem, ReviewerID: authorA, Text: "second", Sentiment: sentiment.Positive})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	after, _ := f.svc.Single(ctx, rawItem, authorA)
	if after.Text != "second" || after.Sentiment != sentiment.Positive {
		t.Fatalf("edit not applied: %+v", after)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("in-place edit must keep created_at")
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("in-place edit must bump updated_at")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t, captcha.Static(true), 0)
	ctx := context.Background()
	f.create(t, actorA, authorA, "bye", sentiment.Negative)

	req := DeleteRequest{ItemID: rawItem, ReviewerID: authorA, Reason: "spam"}
	if err := f.svc.Delete(ctx, moderator, req); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := f.svc.Delete(ctx, moderator, req); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	log, err := f.svc.ModerationLog(ctx, moderator, rawItem, 0)
	if err != nil {
		t.Fatalf("ModerationLog: %v", err)
	}
	if len(log) != 1 || log[0].Action != repo.ActionReviewDelete {
		t.Fatalf("expected a single delete entry, got %+v", log)
	}
	payload, err := log[0].Delete()
	if err != nil || payload.Reason != "spam" {
		t.Fatalf("unexpected payload %+v (%v)", payload, err)
	}

	if err := f.svc.Delete(ctx, actorA, DeleteRequest{ItemID: rawItem, ReviewerID: 555}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCurate(t *testing.T) {
	f := newFixture(t, captcha.Static(true), 0)
	ctx := context.Background()
	f.create(t, actorA, authorA, "nice", sentiment.Positive)
	rev, _ := f.svc.Single(ctx, rawItem, authorA)

	if _, err := f.svc.Curate(ctx, actorA, rev.ID, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	changed, err := f.svc.Curate(ctx, moderator, rev.ID, true)
	if err != nil || !changed {
		t.Fatalf("first curate: changed=%v err=%v", changed, err)
	}
	first, _ := f.svc.Single(ctx, rawItem, authorA)

	changed, err = f.svc.Curate(ctx, moderator, rev.ID, true)
	if err != nil || changed {
		t.Fatalf("second curate should be a no-op: changed=%v err=%v", changed, err)
	}
	second, _ := f.svc.Single(ctx, rawItem, authorA)
	if !second.CuratedAt.Time.Equal(first.CuratedAt.Time) {
		t.Fatalf("repeat curation moved curated_at")
	}

	changed, err = f.svc.Curate(ctx, moderator, rev.ID, false)
	if err != nil || !changed {
		t.Fatalf("uncurate: changed=%v err=%v", changed, err)
	}

	log, _ := f.svc.ModerationLog(ctx, moderator, rawItem, 0)
	if len(log) != 0 {
		t.Fatalf("curation is not audited, got %+v", log)
	}
}

func TestModerationLogRequiresModerator(t *testing.T) {
	f := newFixture(t, captcha.Static(true), 0)
	if _, err := f.svc.ModerationLog(context.Background(), actorA, rawItem, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestByItemUsesCacheAndInvalidates(t *testing.T) {
	f := newFixture(t, captcha.Static(true), 0)
	ctx := context.Background()
	f.create(t, actorA, authorA, "one", sentiment.Positive)

	first, err := f.svc.ByItem(ctx, rawItem, 0)
	if err != nil || len(first) != 1 {
		t.Fatalf("ByItem: %v %+v", err, first)
	}
	if _, hit, _ := f.cachedPage(0); !hit {
		t.Fatalf("page should be cached after a miss")
	}

	other := auth.Actor{ID: 101}
	f.create(t, other, 101, "two", sentiment.Neutral)
	if _, hit, _ := f.cachedPage(0); hit {
		t.Fatalf("write should invalidate the cached page")
	}

	second, err := f.svc.ByItem(ctx, rawItem, 0)
	if err != nil || len(second) != 2 {
		t.Fatalf("ByItem after write: %v %+v", err, second)
	}

	if _, err := f.svc.ByItem(ctx, "not-hex", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for bad id, got %v", err)
	}
}

func (f *fixture) cachedPage(page int) ([]repo.Review, bool, error) {
	p, _, hit, err := f.cache.Get(context.Background(), itemID, page)
	return p, hit, err
}

func TestConcurrentSubmitsKeepOneActiveRow(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "reviews.db")
	f := newFixtureDSN(t, dsn, captcha.Static(true), 0)
	ctx := context.Background()

	const writers = 16
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		modEdits   int
		unexpected []error
	)
	record := func(err error, moderation bool) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err == nil && moderation:
			modEdits++
		case err == nil:
		case moderation && errors.Is(err, ErrInvariantViolation):
			// the moderator got there before any author write
		default:
			unexpected = append(unexpected, err)
		}
	}

	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			record(f.svc.Submit(ctx, actorA, SubmitRequest{
				ItemID: rawItem, ReviewerID: authorA,
				Text: fmt.Sprintf("take %d", i), Sentiment: sentiment.Neutral,
				HasToken: true, CaptchaToken: "ok",
			}), false)
		}(i)
		go func(i int) {
			defer wg.Done()
			record(f.svc.Submit(ctx, moderator, SubmitRequest{
				ItemID: rawItem, ReviewerID: authorA,
				Text: fmt.Sprintf("moderated %d", i), Sentiment: sentiment.Negative,
			}), true)
		}(i)
	}
	wg.Wait()
	if len(unexpected) > 0 {
		t.Fatalf("unexpected submit errors: %v", unexpected)
	}

	listing, err := f.store.ByItem(ctx, itemID, 0)
	if err != nil {
		t.Fatalf("ByItem: %v", err)
	}
	if len(listing) != 1 {
		t.Fatalf("expected one active review, got %d", len(listing))
	}
	if !strings.HasPrefix(listing[0].Text, "take ") && !strings.HasPrefix(listing[0].Text, "moderated ") {
		t.Fatalf("unexpected text %q", listing[0].Text)
	}

	log, err := f.svc.ModerationLog(ctx, moderator, rawItem, 0)
	if err != nil {
		t.Fatalf("ModerationLog: %v", err)
	}
	if len(log) != modEdits {
		t.Fatalf("moderation log has %d entries, want one per successful moderator edit (%d)", len(log), modEdits)
	}
}
