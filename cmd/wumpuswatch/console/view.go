package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wumpuswatch/internal/client"
)

// View renders the whole console frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.alert != "" {
		return m.viewAlert()
	}
	if m.picking {
		return m.viewPicker()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	snap := m.state.Snapshot()
	if snap == nil {
		b.WriteString(m.viewInitializing())
	} else {
		b.WriteString(m.viewWorld())
	}

	b.WriteString("\n")
	if m.width > 0 {
		b.WriteString(m.styles.RenderDivider(m.width) + "\n")
	}
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m Model) viewHeader() string {
	title := m.styles.Header.Render(" WUMPUSWATCH ")

	status := m.state.Status()
	var badge string
	switch status {
	case client.StatusConnected:
		badge = m.styles.Success.Render("● connected")
	case client.StatusConnecting:
		badge = m.styles.Warning.Render(m.spinner.View() + "connecting")
	default:
		badge = m.styles.Error.Render("○ disconnected")
	}

	endpoint := m.styles.Info.Render(m.manager.URL())
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge, "  ", endpoint)
}

// viewInitializing covers the window between launch and the first snapshot.
func (m Model) viewInitializing() string {
	line := m.projector.Initializing(m.state.Status())
	if m.state.Status() == client.StatusConnecting {
		line = m.spinner.View() + line
	}
	return m.styles.Panel.Render(line)
}

func (m Model) viewWorld() string {
	snap := m.state.Snapshot()

	ground := m.styles.Panel.Render(
		m.styles.Title.Render("World") + "\n" + m.projector.GroundGrid(snap))

	panels := []string{ground}
	if snap.HasBeliefGrid() {
		panels = append(panels, m.styles.Panel.Render(
			m.styles.Title.Render("Agent beliefs")+"\n"+m.projector.BeliefGrid(snap)))
	}
	grids := lipgloss.JoinHorizontal(lipgloss.Top, panels...)

	sections := []string{
		grids,
		m.projector.StatusLine(snap),
		m.styles.Title.Render("Percepts") + "  " + m.projector.PerceptLine(snap),
	}

	if inference := m.projector.LastInference(snap); inference != "" {
		sections = append(sections, inference)
	}

	sections = append(sections, m.styles.Panel.Render(
		m.styles.Title.Render(m.knowledgeTitle(len(snap.KnowledgeBase)))+"\n"+m.log.View()))

	// The action panel only exists once the agent has acted.
	if act := m.state.Action(); act != nil {
		sections = append(sections, m.styles.Panel.Render(m.projector.ActionPanel(act)))
	}

	return strings.Join(sections, "\n")
}

func (m Model) knowledgeTitle(total int) string {
	if total == 0 {
		return "Knowledge"
	}
	return fmt.Sprintf("Knowledge (%d)", total)
}

func (m Model) viewFooter() string {
	var play string
	if m.driver.Running() {
		play = m.styles.Badge.Render("PLAYING")
	} else {
		play = m.styles.Muted.Render("paused")
	}

	keys := strings.Join([]string{
		m.styles.KeyHint.Render("space") + " play/pause",
		m.styles.KeyHint.Render("s") + " step",
		m.styles.KeyHint.Render("r") + " reset",
		m.styles.KeyHint.Render("u") + " upload",
		m.styles.KeyHint.Render("c") + " reconnect",
		m.styles.KeyHint.Render("q") + " quit",
	}, "  ")

	footer := m.styles.Footer.Render(play + "  " + keys)
	if m.lastErr != "" {
		footer += "\n" + m.styles.Error.Render(m.lastErr)
	}
	return footer
}

func (m Model) viewAlert() string {
	body := m.styles.Alert.Render(m.alert) + "\n\n" +
		m.styles.Muted.Render("press enter to dismiss")
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	return body
}

func (m Model) viewPicker() string {
	return m.styles.Title.Render("Choose an environment file to upload") + "\n" +
		m.styles.Subtitle.Render("esc to cancel") + "\n\n" +
		m.picker.View()
}
