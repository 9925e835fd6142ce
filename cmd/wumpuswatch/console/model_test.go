package console

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wumpuswatch/internal/autoplay"
	"wumpuswatch/internal/client"
	"wumpuswatch/internal/config"
	"wumpuswatch/internal/control"
	"wumpuswatch/internal/protocol"
)

// testModel builds a console over a dead endpoint; commands returned by
// Update are not executed unless a test runs them explicitly.
func testModel(t *testing.T) Model {
	t.Helper()
	cfg := config.Default()
	state := client.NewState()
	manager := client.NewManager("127.0.0.1", 1, state)
	ctl := control.New("127.0.0.1", 1, nil)
	driver := autoplay.New(ctl, state, cfg.Autoplay.Interval())
	ctl.SetPauser(driver)
	t.Cleanup(func() {
		driver.Close()
		manager.Close()
	})
	return NewModel(cfg, state, manager, ctl, driver)
}

// terminalModel builds a console connected to a live endpoint whose only
// frame is a finished game, and waits until that snapshot has landed.
func terminalModel(t *testing.T) Model {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := json.Marshal(protocol.Snapshot{
			Grid:       [][]string{{"A", ""}, {"", "W"}},
			AgentPos:   protocol.Position{X: 0, Y: 0},
			AgentAlive: false,
			GameOver:   true,
		})
		frame, _ := json.Marshal(protocol.Envelope{Type: protocol.TypeGameState, Data: data})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := config.Default()
	state := client.NewState()
	manager := client.NewManager(u.Hostname(), port, state)
	ctl := control.New(u.Hostname(), port, nil)
	driver := autoplay.New(ctl, state, cfg.Autoplay.Interval())
	ctl.SetPauser(driver)
	t.Cleanup(func() {
		driver.Close()
		manager.Close()
	})

	require.NoError(t, manager.Connect())
	require.Eventually(t, state.GameOver, 2*time.Second, 10*time.Millisecond)
	return NewModel(cfg, state, manager, ctl, driver)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_QuitKeys(t *testing.T) {
	m := testModel(t)

	updated, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, updated.(Model).quitting)
}

func TestModel_InitializingView(t *testing.T) {
	m := testModel(t)

	// Before any snapshot the view reflects the connection status.
	out := m.View()
	assert.Contains(t, out, "disconnected")
	assert.Contains(t, out, "Press c to reconnect")
	assert.NotContains(t, out, "Knowledge", "no panels before the first snapshot")
}

func TestModel_AlertBlocksInput(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(uploadFinishedMsg{name: "cave.txt", err: assert.AnError})
	m = updated.(Model)
	require.NotEmpty(t, m.alert)
	assert.Contains(t, m.View(), "cave.txt")

	// Ordinary keys are swallowed while the alert shows.
	updated, cmd := m.Update(key("s"))
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.alert)

	// Enter acknowledges.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.Empty(t, m.alert)
}

func TestModel_UploadSuccessIsQuiet(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(uploadFinishedMsg{name: "cave.txt"})
	m = updated.(Model)
	assert.Empty(t, m.alert, "only failed uploads block the UI")
}

func TestModel_SpaceTogglesPlay(t *testing.T) {
	m := testModel(t)

	// Idle: space issues a start command (not executed here).
	_, cmd := m.Update(key(" "))
	require.NotNil(t, cmd)
	assert.False(t, m.driver.Running())

	// Running: space pauses synchronously, no server round trip.
	m.driver.Start()
	require.True(t, m.driver.Running())
	_, cmd = m.Update(key(" "))
	assert.Nil(t, cmd)
	assert.False(t, m.driver.Running())
}

func TestModel_StepKeyRefusedAfterGameOver(t *testing.T) {
	m := terminalModel(t)

	updated, cmd := m.Update(key("s"))
	m = updated.(Model)
	assert.Nil(t, cmd, "no step request may leave the client once the game is over")
	assert.Contains(t, m.lastErr, "game over")
	assert.Contains(t, m.View(), "game over", "the footer tells the user how to continue")

	// Reset stays available so the user can start a fresh game.
	_, cmd = m.Update(key("r"))
	assert.NotNil(t, cmd)
}

func TestModel_StepKeyIssuesStepWhileGameLive(t *testing.T) {
	m := testModel(t)

	// No snapshot yet means the game is not terminal; stepping is allowed.
	_, cmd := m.Update(key("s"))
	assert.NotNil(t, cmd)
}

func TestModel_ControlErrorsSurfaceInFooter(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(controlDoneMsg{op: "step", err: assert.AnError})
	m = updated.(Model)
	assert.Empty(t, m.alert, "control failures never block")
	assert.Contains(t, m.lastErr, "step")
	assert.Contains(t, m.View(), "step")
}

func TestModel_PickerToggle(t *testing.T) {
	m := testModel(t)

	updated, cmd := m.Update(key("u"))
	m = updated.(Model)
	assert.True(t, m.picking)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "environment file")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.False(t, m.picking)
}

func TestModel_ReconnectKeyOnlyWhenDisconnected(t *testing.T) {
	m := testModel(t)

	require.Equal(t, client.StatusDisconnected, m.state.Status())
	_, cmd := m.Update(key("c"))
	assert.NotNil(t, cmd, "disconnected: c dials again")
}

func TestModel_StateUpdateRearmsListener(t *testing.T) {
	m := testModel(t)

	_, cmd := m.Update(stateUpdatedMsg{})
	assert.NotNil(t, cmd, "the update listener must be re-armed")
}

func TestModel_DividerAboveFooterOnceSized(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 24})
	m = updated.(Model)
	assert.Contains(t, m.View(), strings.Repeat("─", 40))
}

func TestModel_FooterShowsKeys(t *testing.T) {
	m := testModel(t)
	out := m.View()
	for _, hint := range []string{"play/pause", "step", "reset", "upload", "reconnect", "quit"} {
		assert.True(t, strings.Contains(out, hint), "footer should mention %q", hint)
	}
}
