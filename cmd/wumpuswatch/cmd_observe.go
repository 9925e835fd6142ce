package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wumpuswatch/internal/client"
	"wumpuswatch/internal/store"
)

// observeCmd streams decoded state to structured logs, no TUI. Useful for
// piping a run into files or running under a supervisor.
var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Stream agent state to structured logs (headless)",
	Long: `Connects to the agent process and logs every snapshot and action as it
arrives, until interrupted or the channel closes. With the recorder enabled
in config, the run is also persisted as a session.`,
	RunE: runObserve,
}

func runObserve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := client.NewState()
	manager := client.NewManager(cfg.Server.Host, cfg.Server.Port, state)
	defer manager.Close()

	if cfg.Recorder.Enabled {
		recorder, err := store.OpenRecorder(cfg.Recorder.Path, manager.URL())
		if err != nil {
			return fmt.Errorf("open session recorder: %w", err)
		}
		defer recorder.Close()
		manager.SetSink(recorder)
		logger.Info("recording session", zap.String("session_id", recorder.SessionID()))
	}

	if err := manager.Connect(); err != nil {
		return err
	}
	logger.Info("observing", zap.String("url", manager.URL()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-state.Updates():
				logUpdate(state)
				if state.Status() == client.StatusDisconnected {
					return errors.New("channel closed by the agent process")
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted")
		return nil
	}
	return err
}

// logUpdate emits whatever changed since the last wakeup. The notification
// channel coalesces, so everything current is logged each time.
func logUpdate(state *client.State) {
	if snap := state.Snapshot(); snap != nil {
		fields := []zap.Field{
			zap.Int("x", snap.AgentPos.X),
			zap.Int("y", snap.AgentPos.Y),
			zap.Bool("alive", snap.AgentAlive),
			zap.Bool("game_over", snap.GameOver),
			zap.Bool("has_gold", snap.HasGold),
			zap.Strings("percepts", snap.Percepts),
			zap.Int("knowledge", len(snap.KnowledgeBase)),
		}
		if snap.Score != nil {
			fields = append(fields, zap.Int("score", *snap.Score))
		}
		if snap.LastInference != "" {
			fields = append(fields, zap.String("inference", snap.LastInference))
		}
		logger.Info("snapshot", fields...)
	}
	if act := state.Action(); act != nil {
		logger.Info("action",
			zap.String("action", act.Action),
			zap.Int("x", act.Position.X),
			zap.Int("y", act.Position.Y),
			zap.String("reasoning", act.Reasoning))
	}
}
