// Package view derives display-ready text from the latest client state. The
// projector is pure: same snapshot, action, and status in, same strings out.
// All coloring goes through an injected Styles value so tests can render
// unstyled.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wumpuswatch/internal/client"
	"wumpuswatch/internal/protocol"
)

// KnowledgeTailSize is how many knowledge entries the log panel shows.
const KnowledgeTailSize = 10

// Styles carries every lipgloss style the projector uses. The zero value
// renders plain text.
type Styles struct {
	// Ground-truth cells
	Agent  lipgloss.Style
	Wumpus lipgloss.Style
	Pit    lipgloss.Style
	Gold   lipgloss.Style
	Empty  lipgloss.Style

	// Belief cells
	Safe         lipgloss.Style
	Confirmed    lipgloss.Style
	Suspected    lipgloss.Style
	Marker       lipgloss.Style
	Unknown      lipgloss.Style
	Unrecognized lipgloss.Style

	// Text
	Label      lipgloss.Style
	FactType   lipgloss.Style
	Confidence lipgloss.Style
	Dim        lipgloss.Style
	GameOver   lipgloss.Style
}

// DefaultStyles returns the console palette.
func DefaultStyles() Styles {
	return Styles{
		Agent:  lipgloss.NewStyle().Foreground(lipgloss.Color("#007bff")).Bold(true),
		Wumpus: lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545")).Bold(true),
		Pit:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")),
		Gold:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffc107")).Bold(true),
		Empty:  lipgloss.NewStyle().Foreground(lipgloss.Color("#343a40")),

		Safe:         lipgloss.NewStyle().Foreground(lipgloss.Color("#28a745")),
		Confirmed:    lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545")).Bold(true),
		Suspected:    lipgloss.NewStyle().Foreground(lipgloss.Color("#fd7e14")),
		Marker:       lipgloss.NewStyle().Foreground(lipgloss.Color("#17a2b8")),
		Unknown:      lipgloss.NewStyle().Foreground(lipgloss.Color("#343a40")),
		Unrecognized: lipgloss.NewStyle().Foreground(lipgloss.Color("#e83e8c")),

		Label:      lipgloss.NewStyle().Bold(true),
		FactType:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6f42c1")),
		Confidence: lipgloss.NewStyle().Foreground(lipgloss.Color("#17a2b8")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")),
		GameOver:   lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545")).Bold(true).Reverse(true),
	}
}

// Projector renders client state into panel text.
type Projector struct {
	styles Styles
}

// New builds a projector with the given styles.
func New(styles Styles) Projector {
	return Projector{styles: styles}
}

// Initializing is what the console shows before the first snapshot arrives.
// It reflects the connection status so a dead server is distinguishable from
// a quiet one.
func (p Projector) Initializing(status client.Status) string {
	switch status {
	case client.StatusConnecting:
		return "Connecting to the agent process..."
	case client.StatusConnected:
		return "Connected. Waiting for the first snapshot..."
	default:
		return "Disconnected. Press c to reconnect."
	}
}

// GroundGrid renders the ground-truth grid, one glyph per cell.
func (p Projector) GroundGrid(snap *protocol.Snapshot) string {
	rows := make([]string, 0, len(snap.Grid))
	for y, row := range snap.Grid {
		cells := make([]string, 0, len(row))
		for x, token := range row {
			cells = append(cells, p.groundCell(token, protocol.Position{X: x, Y: y}, snap.AgentPos))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

func (p Projector) groundCell(token string, cell, agent protocol.Position) string {
	switch protocol.DecodeGroundCell(token, cell, agent) {
	case protocol.GroundAgent:
		return p.styles.Agent.Render("A")
	case protocol.GroundWumpus:
		return p.styles.Wumpus.Render("W")
	case protocol.GroundPit:
		return p.styles.Pit.Render("P")
	case protocol.GroundGold:
		return p.styles.Gold.Render("G")
	default:
		return p.styles.Empty.Render("·")
	}
}

// BeliefGrid renders the agent's belief grid, one glyph per cell, with the
// agent's own position overlaid. Empty string when the snapshot carries no
// belief grid.
func (p Projector) BeliefGrid(snap *protocol.Snapshot) string {
	if !snap.HasBeliefGrid() {
		return ""
	}
	rows := make([]string, 0, len(snap.KnowledgeGrid))
	for y, row := range snap.KnowledgeGrid {
		cells := make([]string, 0, len(row))
		for x, code := range row {
			if (protocol.Position{X: x, Y: y}) == snap.AgentPos {
				cells = append(cells, p.styles.Agent.Render("A"))
				continue
			}
			cells = append(cells, p.beliefCell(code))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

func (p Projector) beliefCell(code string) string {
	cell := protocol.DecodeBeliefCode(code)
	switch cell.Category {
	case protocol.BeliefVisitedSafe:
		return p.styles.Safe.Render("✓")
	case protocol.BeliefGold:
		return p.styles.Gold.Render("$")
	case protocol.BeliefPossibleWumpus:
		return p.styles.Suspected.Render("w")
	case protocol.BeliefPossiblePit:
		return p.styles.Suspected.Render("p")
	case protocol.BeliefConfirmedWumpus:
		return p.styles.Confirmed.Render("W")
	case protocol.BeliefConfirmedPit:
		return p.styles.Confirmed.Render("P")
	case protocol.BeliefPossibleHazard:
		return p.styles.Suspected.Render("x")
	case protocol.BeliefLowThreat:
		return p.styles.Suspected.Render("~")
	case protocol.BeliefScent:
		return p.styles.Marker.Render("s")
	case protocol.BeliefBreezeResidue:
		return p.styles.Marker.Render("b")
	case protocol.BeliefScentAndBreeze:
		return p.styles.Marker.Render("t")
	case protocol.BeliefUnrecognized:
		return p.styles.Unrecognized.Render("?")
	default:
		return p.styles.Unknown.Render("·")
	}
}

// StatusLine summarizes the agent's situation: position, vital state, score
// and arrows when the server reports them.
func (p Projector) StatusLine(snap *protocol.Snapshot) string {
	parts := []string{p.styles.Label.Render("Agent ") + snap.AgentPos.String()}

	if snap.AgentAlive {
		parts = append(parts, "alive")
	} else {
		parts = append(parts, p.styles.Confirmed.Render("dead"))
	}
	if snap.HasGold {
		parts = append(parts, p.styles.Gold.Render("carrying gold"))
	}
	if snap.Score != nil {
		parts = append(parts, fmt.Sprintf("score %d", *snap.Score))
	}
	if snap.ArrowsLeft != nil {
		parts = append(parts, fmt.Sprintf("arrows %d", *snap.ArrowsLeft))
	}

	line := strings.Join(parts, "  |  ")
	if snap.GameOver {
		line += "  " + p.styles.GameOver.Render(" GAME OVER ")
	}
	return line
}

// PerceptLine renders the current percepts, or a quiet placeholder when the
// agent senses nothing.
func (p Projector) PerceptLine(snap *protocol.Snapshot) string {
	summary := protocol.PerceptSummary(snap.Percepts)
	if summary == "" {
		return p.styles.Dim.Render("no percepts")
	}
	return summary
}

// KnowledgeLog renders the tail of the knowledge base, most recent last,
// each entry as "[type] content (NN%)". The header carries the total count
// when entries were truncated away.
func (p Projector) KnowledgeLog(snap *protocol.Snapshot) string {
	total := len(snap.KnowledgeBase)
	if total == 0 {
		return p.styles.Dim.Render("knowledge base is empty")
	}

	tail := snap.KnowledgeTail(KnowledgeTailSize)
	lines := make([]string, 0, len(tail)+1)
	if total > len(tail) {
		lines = append(lines, p.styles.Dim.Render(
			fmt.Sprintf("... %d earlier entries", total-len(tail))))
	}
	for _, item := range tail {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			p.styles.FactType.Render("["+item.Type+"]"),
			item.Content,
			p.styles.Confidence.Render(fmt.Sprintf("(%d%%)", item.ConfidencePercent())),
		))
	}
	return strings.Join(lines, "\n")
}

// LastInference renders the inference headline, empty when there is none.
func (p Projector) LastInference(snap *protocol.Snapshot) string {
	if snap.LastInference == "" {
		return ""
	}
	return p.styles.Label.Render("Inference: ") + snap.LastInference
}

// ActionPanel renders the most recent action with its reasoning. Empty string
// before the first action event; the console hides the panel entirely.
func (p Projector) ActionPanel(act *protocol.ActionEvent) string {
	if act == nil {
		return ""
	}
	lines := []string{
		p.styles.Label.Render("Action: ") + act.Action + "  " + p.styles.Dim.Render("from "+act.Position.String()),
	}
	if act.Reasoning != "" {
		lines = append(lines, p.styles.Label.Render("Reasoning: ")+act.Reasoning)
	}
	return strings.Join(lines, "\n")
}
