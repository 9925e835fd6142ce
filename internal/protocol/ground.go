package protocol

import "strings"

// =============================================================================
// GROUND-TRUTH GRID DECODING
// =============================================================================

// GroundCategory classifies one cell of the ground-truth grid.
type GroundCategory int

const (
	GroundEmpty GroundCategory = iota
	GroundAgent
	GroundWumpus
	GroundPit
	GroundGold
)

// DecodeGroundCell decodes a ground-truth cell token. A token can carry
// several markers at once (e.g. "AW" when the agent walks into the wumpus),
// so decoding is substring membership with a fixed precedence: the agent's
// own coordinate wins over any marker, then wumpus over pit over gold.
func DecodeGroundCell(token string, cell, agentPos Position) GroundCategory {
	if cell == agentPos {
		return GroundAgent
	}
	switch {
	case strings.Contains(token, "W"):
		return GroundWumpus
	case strings.Contains(token, "P"):
		return GroundPit
	case strings.Contains(token, "G"):
		return GroundGold
	}
	return GroundEmpty
}
