package sqlite

import (
	"context"
	"database/sql"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS members (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	telegram_id TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	username    TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS experiences (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id    INTEGER NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	company_name TEXT NOT NULL,
	location     TEXT,
	start_date   TEXT,
	end_date     TEXT,
	is_current   INTEGER NOT NULL DEFAULT 0,
	description  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_experiences_member ON experiences(member_id);
CREATE TABLE IF NOT EXISTS skills (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id INTEGER NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	name      TEXT NOT NULL,
	UNIQUE (member_id, name)
);
CREATE TABLE IF NOT EXISTS experience_skills (
	experience_id INTEGER NOT NULL REFERENCES experiences(id) ON DELETE CASCADE,
	skill_id      INTEGER NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
	PRIMARY KEY (experience_id, skill_id)
);
CREATE TABLE IF NOT EXISTS uploads (
	id          TEXT PRIMARY KEY,
	telegram_id TEXT NOT NULL,
	member_id   INTEGER REFERENCES members(id) ON DELETE SET NULL,
	file_name   TEXT NOT NULL,
	mime_type   TEXT NOT NULL,
	size_bytes  INTEGER NOT NULL,
	stage       TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	archive_uri TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_uploads_telegram ON uploads(telegram_id);
`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Times are stored as fixed-width UTC RFC 3339 text so that they sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
