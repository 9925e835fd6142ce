package client

import (
	"sync"

	"wumpuswatch/internal/protocol"
)

// =============================================================================
// CONNECTION STATUS
// =============================================================================

// Status is the lifecycle state of the channel to the agent process.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// =============================================================================
// CLIENT STATE
// =============================================================================

// State holds the latest authoritative data received from the agent process:
// connection status, most recent snapshot, most recent action. It is written
// by the Manager and read by consumers (console, observe mode).
//
// Change notification is a coalescing channel: at most one pending signal,
// consumers re-read the whole state on every wakeup. Missed intermediate
// values are fine because only the latest snapshot is ever rendered.
type State struct {
	mu       sync.RWMutex
	status   Status
	snapshot *protocol.Snapshot
	action   *protocol.ActionEvent

	updates chan struct{}
}

// NewState returns a State in the disconnected status with no data yet.
func NewState() *State {
	return &State{
		status:  StatusDisconnected,
		updates: make(chan struct{}, 1),
	}
}

// Updates returns the notification channel. One receive may cover any number
// of writes.
func (s *State) Updates() <-chan struct{} {
	return s.updates
}

func (s *State) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Status returns the current connection status.
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot returns the latest snapshot, nil before the first one arrives.
func (s *State) Snapshot() *protocol.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Action returns the latest action event, nil before the first one arrives.
func (s *State) Action() *protocol.ActionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.action
}

// GameOver reports whether the latest known snapshot is terminal. False while
// no snapshot has been received.
func (s *State) GameOver() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil && s.snapshot.GameOver
}

func (s *State) setStatus(status Status) {
	s.mu.Lock()
	changed := s.status != status
	s.status = status
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *State) setSnapshot(snap *protocol.Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	s.notify()
}

func (s *State) setAction(act *protocol.ActionEvent) {
	s.mu.Lock()
	s.action = act
	s.mu.Unlock()
	s.notify()
}
