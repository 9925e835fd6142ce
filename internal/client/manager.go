// Package client owns the websocket channel to the Wumpus World agent
// process: dialing, the read loop, frame decoding, and the shared State that
// the rest of the application renders from.
package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"wumpuswatch/internal/logging"
	"wumpuswatch/internal/protocol"
)

// Sink receives every successfully decoded message, in arrival order. Used by
// the session recorder; optional.
type Sink interface {
	RecordSnapshot(protocol.Snapshot)
	RecordAction(protocol.ActionEvent)
}

// Manager owns the single duplex channel to the agent process. The channel is
// inbound-only in practice: the manager never writes application frames.
//
// There is no automatic reconnection. After a drop the status goes to
// disconnected and stays there until Connect is called again.
type Manager struct {
	url   string
	state *State

	mu      sync.Mutex
	conn    *websocket.Conn
	dialing bool
	closed  bool
	sink    Sink
}

// NewManager builds a manager for ws://host:port/ws feeding the given state.
func NewManager(host string, port int, state *State) *Manager {
	return &Manager{
		url:   fmt.Sprintf("ws://%s:%d/ws", host, port),
		state: state,
	}
}

// SetSink installs the optional message sink. Must be called before Connect.
func (m *Manager) SetSink(sink Sink) {
	m.mu.Lock()
	m.sink = sink
	m.mu.Unlock()
}

// URL returns the websocket endpoint this manager dials.
func (m *Manager) URL() string {
	return m.url
}

// Connect dials the agent process and starts the read loop. Guarded: while a
// dial is in flight or a connection is live, further calls are no-ops. Safe
// to call again after a disconnect.
func (m *Manager) Connect() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("connection manager is closed")
	}
	if m.dialing || m.conn != nil {
		m.mu.Unlock()
		return nil
	}
	m.dialing = true
	m.mu.Unlock()

	m.state.setStatus(StatusConnecting)
	logging.Channel("dialing %s", m.url)

	conn, _, err := websocket.DefaultDialer.Dial(m.url, nil)

	m.mu.Lock()
	m.dialing = false
	if err != nil {
		m.mu.Unlock()
		m.state.setStatus(StatusDisconnected)
		return fmt.Errorf("dial %s: %w", m.url, err)
	}
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		m.state.setStatus(StatusDisconnected)
		return fmt.Errorf("connection manager is closed")
	}
	m.conn = conn
	m.mu.Unlock()

	m.state.setStatus(StatusConnected)
	logging.Channel("connected to %s", m.url)

	go m.readLoop(conn)
	return nil
}

// Close tears the channel down. Idempotent; the read loop (if any) exits on
// the closed socket and flips status to disconnected.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

// readLoop drains the connection until it errors, dispatching every frame.
// Runs on its own goroutine, one per live connection.
func (m *Manager) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		m.mu.Lock()
		if m.conn == conn {
			m.conn = nil
		}
		m.mu.Unlock()
		m.state.setStatus(StatusDisconnected)
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			logging.Channel("channel closed: %v", err)
			return
		}
		m.dispatch(frame)
	}
}

// dispatch decodes one frame. Malformed JSON and snapshots that fail
// structural validation are dropped without closing the channel; unknown
// message types are a forward-compatible no-op.
func (m *Manager) dispatch(frame []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		logging.ChannelWarn("dropping malformed frame: %v", err)
		return
	}

	switch env.Type {
	case protocol.TypeGameState:
		var snap protocol.Snapshot
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			logging.ChannelWarn("dropping malformed game_state payload: %v", err)
			return
		}
		if err := snap.Validate(); err != nil {
			logging.ChannelWarn("dropping invalid snapshot: %v", err)
			return
		}
		m.state.setSnapshot(&snap)
		if sink := m.currentSink(); sink != nil {
			sink.RecordSnapshot(snap)
		}

	case protocol.TypeAgentAction:
		var act protocol.ActionEvent
		if err := json.Unmarshal(env.Data, &act); err != nil {
			logging.ChannelWarn("dropping malformed agent_action payload: %v", err)
			return
		}
		m.state.setAction(&act)
		if sink := m.currentSink(); sink != nil {
			sink.RecordAction(act)
		}

	default:
		logging.ChannelDebug("ignoring message type %q", env.Type)
	}
}

func (m *Manager) currentSink() Sink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sink
}
