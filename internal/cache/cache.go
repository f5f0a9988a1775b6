// Package cache is a disposable read-through store for collaborator
// responses (helpdesk tickets, CRM customer lists, ranking rows). It keeps
// repeat runs over the same period from refetching everything; the flat
// output files remain the only system of record, so deleting the cache
// file is always safe.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// DefaultTTL bounds how long a cached response is served before the
// collaborator is asked again.
const DefaultTTL = 24 * time.Hour

// Store is a sqlite-backed response cache keyed by collaborator name plus
// a request key.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

const migration = `
CREATE TABLE IF NOT EXISTS fetch_cache (
	id           TEXT PRIMARY KEY,
	collaborator TEXT NOT NULL,
	request_key  TEXT NOT NULL,
	payload      TEXT NOT NULL,
	fetched_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fetch_cache_lookup ON fetch_cache(collaborator, request_key);
CREATE INDEX IF NOT EXISTS idx_fetch_cache_expires_at ON fetch_cache(expires_at);
`

// Open opens (or creates) the cache database at path and applies the
// schema. A ttl of zero falls back to DefaultTTL; a negative ttl writes
// entries that are already expired.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: migrate")
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Store{db: db, ttl: ttl}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Key builds a request key from its parts, e.g. an email plus a period.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Get loads the newest unexpired payload for (collaborator, key) into v.
// The bool result is false on a miss.
func (s *Store) Get(ctx context.Context, collaborator, key string, v any) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM fetch_cache
		 WHERE collaborator = ? AND request_key = ? AND expires_at > datetime('now')
		 ORDER BY fetched_at DESC LIMIT 1`,
		collaborator, key,
	)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "cache: get")
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, eris.Wrap(err, "cache: unmarshal payload")
	}
	return true, nil
}

// Put stores v for (collaborator, key) with the store's TTL, replacing
// any previous entry for the same key.
func (s *Store) Put(ctx context.Context, collaborator, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "cache: marshal payload")
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM fetch_cache WHERE collaborator = ? AND request_key = ?`,
		collaborator, key,
	); err != nil {
		return eris.Wrap(err, "cache: clear previous entry")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO fetch_cache (id, collaborator, request_key, payload, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), collaborator, key, string(payload), now, now.Add(s.ttl),
	)
	return eris.Wrap(err, "cache: put")
}

// Purge deletes expired entries and reports how many were removed.
func (s *Store) Purge(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fetch_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "cache: rows affected")
}
