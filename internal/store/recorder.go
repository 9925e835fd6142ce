// Package store persists observation sessions. Every snapshot and action
// received over the channel is appended to a local SQLite database, keyed by
// a per-run session id, for post-hoc inspection.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"wumpuswatch/internal/logging"
	"wumpuswatch/internal/protocol"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	server_url  TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(id),
	received_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	game_over   INTEGER NOT NULL,
	payload     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS actions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(id),
	received_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	action      TEXT NOT NULL,
	payload     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_session ON snapshots(session_id);
CREATE INDEX IF NOT EXISTS idx_actions_session ON actions(session_id);
`

// Recorder appends received messages to the session database. It implements
// the client Sink interface; recording failures are logged, never propagated,
// because persistence must not disturb live observation.
type Recorder struct {
	mu        sync.Mutex
	db        *sql.DB
	sessionID string
}

// OpenRecorder opens (creating if needed) the database at path and begins a
// new session.
func OpenRecorder(path, serverURL string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create recorder directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recorder database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreWarn("failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreWarn("failed to set sqlite journal_mode=WAL: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply recorder schema: %w", err)
	}

	sessionID := uuid.NewString()
	if _, err := db.Exec(
		"INSERT INTO sessions (id, server_url, started_at) VALUES (?, ?, ?)",
		sessionID, serverURL, time.Now().UTC(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}

	logging.Store("recording session %s to %s", sessionID, path)
	return &Recorder{db: db, sessionID: sessionID}, nil
}

// SessionID returns the id of the session being recorded.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// RecordSnapshot appends one snapshot to the session.
func (r *Recorder) RecordSnapshot(snap protocol.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		logging.StoreWarn("failed to encode snapshot: %v", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	gameOver := 0
	if snap.GameOver {
		gameOver = 1
	}
	if _, err := r.db.Exec(
		"INSERT INTO snapshots (session_id, game_over, payload) VALUES (?, ?, ?)",
		r.sessionID, gameOver, string(payload),
	); err != nil {
		logging.StoreWarn("failed to record snapshot: %v", err)
	}
}

// RecordAction appends one action event to the session.
func (r *Recorder) RecordAction(act protocol.ActionEvent) {
	payload, err := json.Marshal(act)
	if err != nil {
		logging.StoreWarn("failed to encode action: %v", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.db.Exec(
		"INSERT INTO actions (session_id, action, payload) VALUES (?, ?, ?)",
		r.sessionID, act.Action, string(payload),
	); err != nil {
		logging.StoreWarn("failed to record action: %v", err)
	}
}

// Close flushes and closes the database.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}
