package console

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"wumpuswatch/internal/autoplay"
	"wumpuswatch/internal/client"
	"wumpuswatch/internal/config"
	"wumpuswatch/internal/control"
	"wumpuswatch/internal/logging"
	"wumpuswatch/internal/store"
)

// Run wires the full console stack and blocks until the user quits.
// Teardown order matters: stop the timer first so no step fires into a
// closing channel, then drop the channel, then flush the recorder.
func Run(cfg config.Config) error {
	if err := logging.Initialize(cfg.Logging.Dir, logging.Options{
		DebugMode: cfg.Logging.DebugMode,
		Level:     cfg.Logging.Level,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.CloseAll()
	logging.Boot("console starting against %s:%d", cfg.Server.Host, cfg.Server.Port)

	state := client.NewState()
	manager := client.NewManager(cfg.Server.Host, cfg.Server.Port, state)

	var recorder *store.Recorder
	if cfg.Recorder.Enabled {
		var err error
		recorder, err = store.OpenRecorder(cfg.Recorder.Path, manager.URL())
		if err != nil {
			return fmt.Errorf("open session recorder: %w", err)
		}
		manager.SetSink(recorder)
	}

	ctl := control.New(cfg.Server.Host, cfg.Server.Port, nil)
	driver := autoplay.New(ctl, state, cfg.Autoplay.Interval())
	ctl.SetPauser(driver)

	model := NewModel(cfg, state, manager, ctl, driver)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := program.Run()

	driver.Close()
	manager.Close()
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			logging.StoreWarn("recorder close: %v", err)
		}
	}
	logging.Boot("console stopped")

	if runErr != nil {
		logging.BootError("console exited with error: %v", runErr)
		return fmt.Errorf("console: %w", runErr)
	}
	return nil
}
