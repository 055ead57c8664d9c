package repo

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Dialect holds the SQL fragments that differ between supported databases.
type Dialect struct {
	Name string
	// upsert is appended to the review INSERT and must overwrite content,
	// reset timestamps and clear deleted_at on (item_id, reviewer_id) conflict.
	upsert string
	// lock is appended to snapshot selects to take a row lock inside a transaction.
	lock   string
	schema []string
}

const conflictUpsert = ` ON CONFLICT (item_id, reviewer_id) DO UPDATE SET
	text = excluded.text,
	sentiment = excluded.sentiment,
	created_at = excluded.created_at,
	updated_at = excluded.updated_at,
	deleted_at = NULL`

var mysqlDialect = Dialect{
	Name: "mysql",
	upsert: ` ON DUPLICATE KEY UPDATE
	text = VALUES(text),
	sentiment = VALUES(sentiment),
	created_at = VALUES(created_at),
	updated_at = VALUES(updated_at),
	deleted_at = NULL`,
	lock: " FOR UPDATE",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS maps (
	id BIGINT NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL DEFAULT '',
	uploader_id BIGINT NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS reviews (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	item_id BIGINT NOT NULL,
	reviewer_id BIGINT NOT NULL,
	text TEXT NOT NULL,
	sentiment SMALLINT NOT NULL DEFAULT 0,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	curated_at DATETIME(6) NULL,
	deleted_at DATETIME(6) NULL,
	UNIQUE KEY review_unique (item_id, reviewer_id),
	KEY review_item_listing (item_id, deleted_at, curated_at, created_at),
	KEY review_reviewer_listing (reviewer_id, deleted_at, created_at)
)`,
		`CREATE TABLE IF NOT EXISTS moderation_log (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	event_id CHAR(36) NOT NULL,
	actor_id BIGINT NOT NULL,
	item_id BIGINT NOT NULL,
	reviewer_id BIGINT NOT NULL,
	action VARCHAR(32) NOT NULL,
	payload JSON NOT NULL,
	created_at DATETIME(6) NOT NULL,
	UNIQUE KEY moderation_log_event (event_id),
	KEY moderation_log_item (item_id, created_at)
)`,
	},
}

var postgresDialect = Dialect{
	Name:   "postgres",
	upsert: conflictUpsert,
	lock:   " FOR UPDATE",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS maps (
	id BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL DEFAULT '',
	uploader_id BIGINT NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS reviews (
	id BIGSERIAL PRIMARY KEY,
	item_id BIGINT NOT NULL,
	reviewer_id BIGINT NOT NULL,
	text TEXT NOT NULL,
	sentiment SMALLINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	curated_at TIMESTAMPTZ NULL,
	deleted_at TIMESTAMPTZ NULL,
	CONSTRAINT review_unique UNIQUE (item_id, reviewer_id)
)`,
		`CREATE INDEX IF NOT EXISTS review_item_listing ON reviews (item_id, curated_at DESC NULLS LAST, created_at DESC) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS review_reviewer_listing ON reviews (reviewer_id, created_at DESC) WHERE deleted_at IS NULL`,
		`CREATE TABLE IF NOT EXISTS moderation_log (
	id BIGSERIAL PRIMARY KEY,
	event_id UUID NOT NULL UNIQUE,
	actor_id BIGINT NOT NULL,
	item_id BIGINT NOT NULL,
	reviewer_id BIGINT NOT NULL,
	action VARCHAR(32) NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS moderation_log_item ON moderation_log (item_id, created_at DESC)`,
	},
}

var sqliteDialect = Dialect{
	Name:   "sqlite",
	upsert: conflictUpsert,
	// sqlite has no row locks; transactions are opened with _txlock=immediate instead.
	lock: "",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS maps (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	uploader_id INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL,
	reviewer_id INTEGER NOT NULL,
	text TEXT NOT NULL,
	sentiment INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	curated_at DATETIME NULL,
	deleted_at DATETIME NULL,
	UNIQUE (item_id, reviewer_id)
)`,
		`CREATE INDEX IF NOT EXISTS review_item_listing ON reviews (item_id, deleted_at, curated_at, created_at)`,
		`CREATE INDEX IF NOT EXISTS review_reviewer_listing ON reviews (reviewer_id, deleted_at, created_at)`,
		`CREATE TABLE IF NOT EXISTS moderation_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id TEXT NOT NULL UNIQUE,
	actor_id INTEGER NOT NULL,
	item_id INTEGER NOT NULL,
	reviewer_id INTEGER NOT NULL,
	action TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at DATETIME NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS moderation_log_item ON moderation_log (item_id, created_at)`,
	},
}

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return mysqlDialect, nil
	case "pgx", "postgres":
		return postgresDialect, nil
	case "sqlite":
		return sqliteDialect, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}
