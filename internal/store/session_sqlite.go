package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// LoadSession loads cross-run state from the config-dir SQLite db, creating
// an empty one on first use.
func (s Store) LoadSession(ctx context.Context) (*Session, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := migrateSessionState(ctx, db); err != nil {
		return nil, err
	}
	return loadSessionFromSQLite(ctx, db)
}

func (s Store) SaveSession(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrateSessionState(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO session_meta(k, v) VALUES(?, ?)`, "version", strconv.Itoa(sess.Version)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO session_meta(k, v) VALUES(?, ?)`, "last_file", strings.TrimSpace(sess.LastFile)); err != nil {
		return err
	}

	// Replace-all strategy: the session is tiny and this keeps writes simple.
	if _, err := tx.ExecContext(ctx, `DELETE FROM docs`); err != nil {
		return err
	}

	nowMs := time.Now().UTC().UnixMilli()
	for _, d := range sess.Docs {
		raw, _ := json.Marshal(d)
		if _, err := tx.ExecContext(ctx, `INSERT INTO docs(path, cursor, opened_at_unixms, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			d.Path, d.Cursor, d.OpenedAt.UTC().UnixMilli(), string(raw), nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sessionDBPath())
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage.
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func migrateSessionState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS docs (
			path TEXT PRIMARY KEY,
			cursor INTEGER NOT NULL,
			opened_at_unixms INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_docs_opened ON docs(opened_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func loadSessionFromSQLite(ctx context.Context, db *sql.DB) (*Session, error) {
	out := &Session{Version: 1}

	readMeta := func(k string) string {
		var v string
		_ = db.QueryRowContext(ctx, `SELECT v FROM session_meta WHERE k = ?`, k).Scan(&v)
		return strings.TrimSpace(v)
	}
	if v := readMeta("version"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.Version = n
		}
	}
	out.LastFile = readMeta("last_file")

	docs, err := readJSONRows[DocState](ctx, db, `SELECT json FROM docs ORDER BY opened_at_unixms DESC, path`)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []DocState{}
	}
	out.Docs = docs
	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
