package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wumpuswatch/internal/protocol"
)

// SessionInfo summarizes one recorded session.
type SessionInfo struct {
	ID        string
	ServerURL string
	StartedAt time.Time
	Snapshots int
	Actions   int
	Finished  bool // a terminal snapshot was recorded
}

// ListSessions reads session summaries from the database at path, most
// recent first.
func ListSessions(path string) ([]SessionInfo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recorder database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT s.id, s.server_url, s.started_at,
		       (SELECT COUNT(*) FROM snapshots WHERE session_id = s.id),
		       (SELECT COUNT(*) FROM actions WHERE session_id = s.id),
		       (SELECT COUNT(*) FROM snapshots WHERE session_id = s.id AND game_over = 1)
		FROM sessions s
		ORDER BY s.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var terminal int
		if err := rows.Scan(&info.ID, &info.ServerURL, &info.StartedAt,
			&info.Snapshots, &info.Actions, &terminal); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.Finished = terminal > 0
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// SessionSnapshots replays the snapshots of one session in arrival order.
func SessionSnapshots(path, sessionID string) ([]protocol.Snapshot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recorder database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(
		"SELECT payload FROM snapshots WHERE session_id = ? ORDER BY id", sessionID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []protocol.Snapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var snap protocol.Snapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
