// Package console implements the interactive bubbletea UI: live grids,
// percepts, the knowledge log, and key-driven control of the agent process.
package console

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"wumpuswatch/cmd/wumpuswatch/ui"
	"wumpuswatch/internal/autoplay"
	"wumpuswatch/internal/client"
	"wumpuswatch/internal/config"
	"wumpuswatch/internal/control"
	"wumpuswatch/internal/view"
)

const (
	controlTimeout  = 10 * time.Second
	refreshInterval = 500 * time.Millisecond
	knowledgeHeight = 12
)

// =============================================================================
// MESSAGES
// =============================================================================

// stateUpdatedMsg signals that the shared client state changed; the model
// re-reads everything it renders.
type stateUpdatedMsg struct{}

// refreshTickMsg keeps ephemeral chrome (autoplay badge, status) fresh even
// when no state update arrives.
type refreshTickMsg time.Time

// connectFinishedMsg reports the outcome of a dial attempt.
type connectFinishedMsg struct{ err error }

// controlDoneMsg reports the outcome of a one-shot control request.
type controlDoneMsg struct {
	op  string
	err error
}

// uploadFinishedMsg reports the outcome of an environment upload. Failure is
// the one control outcome that blocks the UI with an alert.
type uploadFinishedMsg struct {
	name string
	err  error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model for the console.
type Model struct {
	cfg       config.Config
	styles    ui.Styles
	projector view.Projector

	state   *client.State
	manager *client.Manager
	control *control.Client
	driver  *autoplay.Driver

	spinner  spinner.Model
	log      viewport.Model
	picker   filepicker.Model
	picking  bool
	alert    string
	lastErr  string
	width    int
	height   int
	quitting bool
}

// NewModel wires a console model over already-constructed collaborators.
func NewModel(cfg config.Config, state *client.State, manager *client.Manager,
	ctl *control.Client, driver *autoplay.Driver) Model {

	styles := ui.DefaultStyles()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Spinner),
	)

	picker := filepicker.New()
	picker.AllowedTypes = []string{".txt"}
	if wd, err := os.Getwd(); err == nil {
		picker.CurrentDirectory = wd
	}

	log := viewport.New(0, knowledgeHeight)

	return Model{
		cfg:       cfg,
		styles:    styles,
		projector: view.New(view.DefaultStyles()),
		state:     state,
		manager:   manager,
		control:   ctl,
		driver:    driver,
		spinner:   sp,
		log:       log,
		picker:    picker,
	}
}

// Init dials the agent process and starts the update listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.connectCmd(),
		m.waitForUpdate(),
		refreshTick(),
	)
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForUpdate blocks until the client state changes. Re-armed after every
// stateUpdatedMsg so there is always exactly one listener.
func (m Model) waitForUpdate() tea.Cmd {
	updates := m.state.Updates()
	return func() tea.Msg {
		<-updates
		return stateUpdatedMsg{}
	}
}

func (m Model) connectCmd() tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		return connectFinishedMsg{err: manager.Connect()}
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// controlCmd runs one control request off the UI goroutine.
func controlCmd(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
		defer cancel()
		return controlDoneMsg{op: op, err: fn(ctx)}
	}
}

// uploadCmd reads the chosen file and posts it to the agent process.
func (m Model) uploadCmd(path string) tea.Cmd {
	ctl := m.control
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return uploadFinishedMsg{name: path, err: err}
		}
		defer file.Close()

		name := filepath.Base(path)
		ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
		defer cancel()
		return uploadFinishedMsg{
			name: name,
			err:  ctl.UploadEnvironment(ctx, name, file),
		}
	}
}
