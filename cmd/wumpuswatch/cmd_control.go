package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wumpuswatch/internal/control"
)

const requestTimeout = 10 * time.Second

var watchUpload bool

// resetCmd puts the agent process back into its initial configuration
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the agent process to its initial world",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		if err := newControlClient().Reset(ctx); err != nil {
			return err
		}
		logger.Info("reset accepted",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))
		return nil
	},
}

// startCmd begins autonomous play on the server side
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start autonomous play",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		if err := newControlClient().Start(ctx); err != nil {
			return err
		}
		logger.Info("start accepted")
		return nil
	},
}

// stepCmd requests a single agent action
var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Request a single agent action",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		if err := newControlClient().Step(ctx); err != nil {
			return err
		}
		logger.Info("step accepted")
		return nil
	},
}

// uploadCmd sends an environment definition file; with --watch it keeps
// re-uploading on every change until interrupted.
var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload an environment definition to the agent process",
	Long: `Uploads a plain-text environment definition. The agent process replaces
its world with the uploaded one and pauses play.

With --watch, the file is re-uploaded on every change, which makes iterating
on an environment definition a save-and-look loop.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		ctl := newControlClient()

		if err := uploadFile(cmd.Context(), ctl, path); err != nil {
			return err
		}
		logger.Info("environment uploaded", zap.String("file", path))

		if !watchUpload {
			return nil
		}
		return watchAndReupload(cmd.Context(), ctl, path)
	},
}

func newControlClient() *control.Client {
	// One-shot commands have no autoplay driver to pause.
	return control.New(cfg.Server.Host, cfg.Server.Port, nil)
}

func uploadFile(ctx context.Context, ctl *control.Client, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return ctl.UploadEnvironment(ctx, filepath.Base(path), file)
}

// watchAndReupload blocks until interrupted, re-uploading on writes. The
// watch sits on the directory because editors typically replace the file
// instead of writing it in place.
func watchAndReupload(parent context.Context, ctl *control.Client, path string) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	logger.Info("watching for changes", zap.String("file", abs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := uploadFile(ctx, ctl, abs); err != nil {
				logger.Warn("re-upload failed", zap.Error(err))
				continue
			}
			logger.Info("re-uploaded", zap.String("file", abs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
