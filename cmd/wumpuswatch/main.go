package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wumpuswatch/cmd/wumpuswatch/console"
	"wumpuswatch/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string
	hostFlag   string
	portFlag   int

	// Loaded configuration, available to every command
	cfg config.Config

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wumpuswatch",
	Short: "wumpuswatch - live observation console for a Wumpus World agent",
	Long: `wumpuswatch attaches to a running Wumpus World agent process and shows
what the agent sees, believes, and decides, as it happens.

It subscribes to the agent's websocket feed for state and action events,
renders the ground-truth world next to the agent's belief grid, and drives
the agent's lifecycle (reset, start, single-step, environment upload) over
its HTTP API.

Run without arguments to start the interactive console.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "wumpuswatch" && cmd.CalledAs() == "wumpuswatch" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive console
		return console.Run(cfg)
	},
}

// loadConfig layers flags over file and environment.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return c, err
	}
	if hostFlag != "" {
		c.Server.Host = hostFlag
	}
	if portFlag != 0 {
		c.Server.Port = portFlag
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "agent process host (overrides config)")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", 0, "agent process port (overrides config)")

	uploadCmd.Flags().BoolVar(&watchUpload, "watch", false, "re-upload whenever the file changes")

	rootCmd.AddCommand(
		resetCmd,
		startCmd,
		stepCmd,
		uploadCmd,
		observeCmd,
		sessionsCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
