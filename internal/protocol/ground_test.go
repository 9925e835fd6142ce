package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeGroundCell(t *testing.T) {
	agent := Position{X: 0, Y: 0}
	other := Position{X: 2, Y: 1}

	t.Run("plain markers", func(t *testing.T) {
		assert.Equal(t, GroundWumpus, DecodeGroundCell("W", other, agent))
		assert.Equal(t, GroundPit, DecodeGroundCell("P", other, agent))
		assert.Equal(t, GroundGold, DecodeGroundCell("G", other, agent))
		assert.Equal(t, GroundEmpty, DecodeGroundCell("", other, agent))
		assert.Equal(t, GroundEmpty, DecodeGroundCell(".", other, agent))
	})

	t.Run("compound token precedence", func(t *testing.T) {
		// Wumpus outranks pit outranks gold within one token.
		assert.Equal(t, GroundWumpus, DecodeGroundCell("WP", other, agent))
		assert.Equal(t, GroundWumpus, DecodeGroundCell("GW", other, agent))
		assert.Equal(t, GroundPit, DecodeGroundCell("PG", other, agent))
	})

	t.Run("agent coordinate wins over any marker", func(t *testing.T) {
		assert.Equal(t, GroundAgent, DecodeGroundCell("AW", agent, agent))
		assert.Equal(t, GroundAgent, DecodeGroundCell("P", agent, agent))
		assert.Equal(t, GroundAgent, DecodeGroundCell("", agent, agent))
	})
}
