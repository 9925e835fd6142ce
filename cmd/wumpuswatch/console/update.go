package console

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"wumpuswatch/internal/client"
	"wumpuswatch/internal/logging"
)

// Update is the bubbletea state machine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.log.Width = msg.Width - 4
		if m.picking {
			m.picker.Height = msg.Height - 6
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateUpdatedMsg:
		m.refreshLog()
		// Re-arm the listener; the channel coalesces so nothing is lost.
		return m, m.waitForUpdate()

	case refreshTickMsg:
		return m, refreshTick()

	case connectFinishedMsg:
		if msg.err != nil {
			m.lastErr = fmt.Sprintf("connect: %v", msg.err)
			logging.Console("connect failed: %v", msg.err)
		} else {
			m.lastErr = ""
		}
		return m, nil

	case controlDoneMsg:
		if msg.err != nil {
			// Non-blocking: the footer shows it, the log records it.
			m.lastErr = fmt.Sprintf("%s: %v", msg.op, msg.err)
			logging.ControlWarn("%s failed: %v", msg.op, msg.err)
		} else {
			m.lastErr = ""
		}
		return m, nil

	case uploadFinishedMsg:
		if msg.err != nil {
			// The one hard user-facing failure: block until acknowledged.
			m.alert = fmt.Sprintf("Upload of %s failed:\n%v", msg.name, msg.err)
			logging.ControlWarn("upload %s failed: %v", msg.name, msg.err)
		} else {
			m.lastErr = ""
			logging.Console("uploaded %s", msg.name)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.picking {
		return m.updatePicker(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A blocking alert eats every key until acknowledged.
	if m.alert != "" {
		switch msg.String() {
		case "enter", "esc":
			m.alert = ""
		}
		return m, nil
	}

	if m.picking {
		if msg.String() == "esc" {
			m.picking = false
			return m, nil
		}
		return m.updatePicker(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case " ", "space":
		if m.driver.Running() {
			// Pause is client-side only; the server keeps no play state worth
			// telling about it.
			m.driver.Pause()
			return m, nil
		}
		return m, controlCmd("start", m.control.Start)

	case "s":
		// The server does not police stepping a finished game; the client
		// refuses on its own once the latest snapshot is terminal.
		if m.state.GameOver() {
			logging.ConsoleDebug("step key ignored: game over")
			m.lastErr = "game over, press r to reset"
			return m, nil
		}
		return m, controlCmd("step", m.control.Step)

	case "r":
		return m, controlCmd("reset", m.control.Reset)

	case "u":
		m.picking = true
		m.picker.Height = max(m.height-6, 10)
		return m, m.picker.Init()

	case "c":
		if m.state.Status() == client.StatusDisconnected {
			return m, m.connectCmd()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return m, m.uploadCmd(path)
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.lastErr = fmt.Sprintf("%s is not an environment file", path)
		return m, cmd
	}
	return m, cmd
}

// refreshLog pushes the current knowledge tail into the viewport, pinned to
// the bottom so the newest inference is always visible.
func (m *Model) refreshLog() {
	snap := m.state.Snapshot()
	if snap == nil {
		return
	}
	content := m.projector.KnowledgeLog(snap)
	m.log.SetContent(content)
	m.log.GotoBottom()
}
