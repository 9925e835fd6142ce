// Package protocol defines the wire types exchanged with the Wumpus World
// agent process and the decoding tables that turn raw cell codes, ground-truth
// tokens, and percept labels into display-ready values.
//
// The agent process pushes JSON envelopes over a websocket; each envelope
// carries a type discriminator and an opaque payload decoded by message type.
package protocol

import (
	"encoding/json"
	"fmt"
	"math"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// Message types carried in the envelope's "type" field.
const (
	TypeGameState   = "game_state"
	TypeAgentAction = "agent_action"
)

// Envelope is the outer frame of every inbound websocket message. Data stays
// raw until the type discriminator selects a payload shape.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// =============================================================================
// POSITIONS
// =============================================================================

// Position is a 0-indexed (x, y) grid coordinate. The agent process
// serializes it as a two-element JSON array, column first.
type Position struct {
	X int
	Y int
}

// UnmarshalJSON accepts the [x, y] array form.
func (p *Position) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// MarshalJSON emits the [x, y] array form.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// KnowledgeItem is one entry of the agent's knowledge base. Confidence is a
// probability in [0, 1].
type KnowledgeItem struct {
	Type       string  `json:"type"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
}

// ConfidencePercent returns the confidence as a rounded whole percentage.
func (k KnowledgeItem) ConfidencePercent() int {
	return int(math.Round(k.Confidence * 100))
}

// Snapshot is a full authoritative state report from the agent process.
// KnowledgeGrid is absent on servers that only publish ground truth; Score
// and ArrowsLeft are absent on servers that don't track them, so both stay
// pointers to keep "absent" distinguishable from zero.
type Snapshot struct {
	Grid          [][]string      `json:"grid"`
	KnowledgeGrid [][]string      `json:"knowledge_grid,omitempty"`
	AgentPos      Position        `json:"agent_pos"`
	AgentAlive    bool            `json:"agent_alive"`
	GameOver      bool            `json:"game_over"`
	HasGold       bool            `json:"has_gold"`
	Score         *int            `json:"score,omitempty"`
	ArrowsLeft    *int            `json:"arrows_left,omitempty"`
	KnowledgeBase []KnowledgeItem `json:"knowledge_base"`
	LastInference string          `json:"last_inference"`
	Percepts      []string        `json:"percepts"`
}

// HasBeliefGrid reports whether this snapshot carries the agent's belief grid
// alongside ground truth.
func (s *Snapshot) HasBeliefGrid() bool {
	return len(s.KnowledgeGrid) > 0
}

// KnowledgeTail returns the most recent n knowledge items, oldest first.
func (s *Snapshot) KnowledgeTail(n int) []KnowledgeItem {
	if n <= 0 || len(s.KnowledgeBase) <= n {
		return s.KnowledgeBase
	}
	return s.KnowledgeBase[len(s.KnowledgeBase)-n:]
}

// Validate checks the structural invariants a renderable snapshot must hold:
// a rectangular ground-truth grid, a belief grid (when present) of identical
// dimensions, and an in-bounds agent position.
func (s *Snapshot) Validate() error {
	rows := len(s.Grid)
	if rows == 0 {
		return fmt.Errorf("snapshot: empty grid")
	}
	cols := len(s.Grid[0])
	for i, row := range s.Grid {
		if len(row) != cols {
			return fmt.Errorf("snapshot: ragged grid row %d: %d cells, want %d", i, len(row), cols)
		}
	}
	if s.HasBeliefGrid() {
		if len(s.KnowledgeGrid) != rows {
			return fmt.Errorf("snapshot: belief grid has %d rows, ground truth has %d", len(s.KnowledgeGrid), rows)
		}
		for i, row := range s.KnowledgeGrid {
			if len(row) != cols {
				return fmt.Errorf("snapshot: ragged belief row %d: %d cells, want %d", i, len(row), cols)
			}
		}
	}
	if s.AgentPos.X < 0 || s.AgentPos.X >= cols || s.AgentPos.Y < 0 || s.AgentPos.Y >= rows {
		return fmt.Errorf("snapshot: agent position %s outside %dx%d grid", s.AgentPos, cols, rows)
	}
	return nil
}

// =============================================================================
// ACTIONS
// =============================================================================

// ActionEvent reports a single action the agent has taken, with the position
// it acted from and the reasoning text produced by its inference engine.
type ActionEvent struct {
	Action    string   `json:"action"`
	Position  Position `json:"position"`
	Reasoning string   `json:"reasoning"`
}
