package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wumpuswatch/internal/protocol"
)

func TestRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	rec, err := OpenRecorder(path, "ws://localhost:8000/ws")
	require.NoError(t, err)
	require.NotEmpty(t, rec.SessionID())

	rec.RecordSnapshot(protocol.Snapshot{
		Grid:     [][]string{{"A", ""}, {"", "G"}},
		AgentPos: protocol.Position{X: 0, Y: 0},
		Percepts: []string{"Glitter"},
	})
	rec.RecordSnapshot(protocol.Snapshot{
		Grid:     [][]string{{"", "A"}, {"", "G"}},
		AgentPos: protocol.Position{X: 1, Y: 0},
		GameOver: true,
		HasGold:  true,
	})
	rec.RecordAction(protocol.ActionEvent{Action: "grab", Reasoning: "glitter here"})
	require.NoError(t, rec.Close())

	sessions, err := ListSessions(path)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, rec.SessionID(), sessions[0].ID)
	assert.Equal(t, "ws://localhost:8000/ws", sessions[0].ServerURL)
	assert.Equal(t, 2, sessions[0].Snapshots)
	assert.Equal(t, 1, sessions[0].Actions)
	assert.True(t, sessions[0].Finished, "a terminal snapshot marks the session finished")

	snaps, err := SessionSnapshots(path, rec.SessionID())
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, protocol.Position{X: 0, Y: 0}, snaps[0].AgentPos)
	assert.True(t, snaps[1].GameOver)
	assert.Equal(t, []string{"Glitter"}, snaps[0].Percepts)
}

func TestRecorder_SeparateSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	first, err := OpenRecorder(path, "ws://a:8000/ws")
	require.NoError(t, err)
	first.RecordAction(protocol.ActionEvent{Action: "turn_left"})
	require.NoError(t, first.Close())

	second, err := OpenRecorder(path, "ws://b:8000/ws")
	require.NoError(t, err)
	second.RecordAction(protocol.ActionEvent{Action: "turn_right"})
	require.NoError(t, second.Close())

	assert.NotEqual(t, first.SessionID(), second.SessionID())

	sessions, err := ListSessions(path)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, s := range sessions {
		assert.Equal(t, 1, s.Actions)
		assert.False(t, s.Finished)
	}
}

func TestListSessions_EmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	rec, err := OpenRecorder(path, "")
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	sessions, err := ListSessions(path)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Zero(t, sessions[0].Snapshots)
}
