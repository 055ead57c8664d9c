package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"reviewsBack/internal/timeutil"
)

const defaultPageSize = 20

// Store persists reviews and the moderation log.
type Store struct {
	db       *sqlx.DB
	dialect  Dialect
	pageSize int
	now      func() time.Time
}

// NewStore constructs a Store for the dialect matching db's driver.
func NewStore(db *sqlx.DB, pageSize int) (*Store, error) {
	dialect, err := DialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Store{db: db, dialect: dialect, pageSize: pageSize, now: timeutil.Now}, nil
}

// WithClock replaces the clock used for stored timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = func() time.Time { return timeutil.Normalize(now()) }
	return s
}

// PageSize reports the number of rows returned per listing page.
func (s *Store) PageSize() int { return s.pageSize }

// Migrate creates the tables used by the review module when missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.Name, err)
		}
	}
	return nil
}

// Tx exposes the mutating store operations bound to one transaction.
type Tx struct {
	tx    *sqlx.Tx
	store *Store
}

// InTx runs fn inside a single transaction. The transaction commits only when
// fn returns nil; errors and panics roll it back.
func (s *Store) InTx(ctx context.Context, fn func(*Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&Tx{tx: tx, store: s}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) offset(page int) int {
	if page < 0 {
		page = 0
	}
	return page * s.pageSize
}
