package protocol

import "strings"

// =============================================================================
// PERCEPT RENDERING
// =============================================================================

// perceptIcons maps the agent's percept vocabulary to display glyphs.
var perceptIcons = map[string]string{
	"Breeze":  "💨",
	"Stench":  "🦨",
	"Glitter": "✨",
	"Bump":    "🧱",
	"Scream":  "😱",
}

// Unknown percept labels still render, with a placeholder glyph.
const perceptFallbackIcon = "❓"

// perceptSeparator joins percept segments in the summary line.
const perceptSeparator = "  "

// PerceptIcon returns the glyph for a percept label, falling back to a
// placeholder for labels outside the known vocabulary.
func PerceptIcon(label string) string {
	if icon, ok := perceptIcons[label]; ok {
		return icon
	}
	return perceptFallbackIcon
}

// PerceptSummary renders the percept list as "<icon> <label>" segments joined
// by a fixed separator. An empty list yields an empty string; callers decide
// how to render "nothing perceived".
func PerceptSummary(percepts []string) string {
	if len(percepts) == 0 {
		return ""
	}
	segments := make([]string, 0, len(percepts))
	for _, label := range percepts {
		segments = append(segments, PerceptIcon(label)+" "+label)
	}
	return strings.Join(segments, perceptSeparator)
}
