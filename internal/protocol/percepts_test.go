package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerceptSummary(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, "", PerceptSummary(nil))
		assert.Equal(t, "", PerceptSummary([]string{}))
	})

	t.Run("known labels keep their glyphs", func(t *testing.T) {
		out := PerceptSummary([]string{"Breeze", "Stench", "Glitter", "Bump", "Scream"})
		for _, label := range []string{"Breeze", "Stench", "Glitter", "Bump", "Scream"} {
			assert.Contains(t, out, label)
		}
		assert.NotContains(t, out, perceptFallbackIcon)
	})

	t.Run("unknown label falls back but still renders", func(t *testing.T) {
		out := PerceptSummary([]string{"Breeze", "Unknown"})
		segments := strings.Split(out, perceptSeparator)
		assert.Len(t, segments, 2)
		assert.Equal(t, "💨 Breeze", segments[0])
		assert.Equal(t, perceptFallbackIcon+" Unknown", segments[1])
	})
}
