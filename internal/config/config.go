// Package config loads wumpuswatch configuration: a YAML file with
// environment-variable overrides on top. The zero configuration works against
// a local agent process with defaults; the file is optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the home directory when no
// --config flag is given.
const DefaultFileName = ".wumpuswatch.yaml"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Autoplay AutoplayConfig `yaml:"autoplay"`
	Recorder RecorderConfig `yaml:"recorder"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig locates the agent process. Host and port are the only
// protocol surface: the websocket endpoint is always ws://host:port/ws and
// the control API always http://host:port/api.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AutoplayConfig tunes continuous play.
type AutoplayConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// Interval returns the tick cadence as a duration.
func (a AutoplayConfig) Interval() time.Duration {
	return time.Duration(a.IntervalMs) * time.Millisecond
}

// RecorderConfig controls the sqlite session recorder. Off by default.
type RecorderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig controls the category file logger used while the TUI owns
// the terminal.
type LoggingConfig struct {
	DebugMode bool   `yaml:"debug_mode"`
	Dir       string `yaml:"dir"`
	Level     string `yaml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server:   ServerConfig{Host: "localhost", Port: 8000},
		Autoplay: AutoplayConfig{IntervalMs: 200},
		Recorder: RecorderConfig{Enabled: false, Path: defaultRecorderPath()},
		Logging:  LoggingConfig{DebugMode: false, Dir: defaultLogDir(), Level: "info"},
	}
}

func defaultRecorderPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wumpuswatch.db"
	}
	return filepath.Join(home, ".wumpuswatch", "sessions.db")
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "logs"
	}
	return filepath.Join(home, ".wumpuswatch", "logs")
}

// Load reads the config file at path, layers it over the defaults, applies
// env overrides, and validates. A missing file is not an error; the defaults
// (plus env) apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults apply
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// applyEnvOverrides layers environment variables over the loaded values.
// WUMPUSWATCH_HOST and WUMPUSWATCH_PORT win over both file and defaults.
func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("WUMPUSWATCH_HOST"); host != "" {
		c.Server.Host = host
	}
	if portStr := os.Getenv("WUMPUSWATCH_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			c.Server.Port = port
		}
	}
	if debug := os.Getenv("WUMPUSWATCH_DEBUG"); debug != "" {
		c.Logging.DebugMode = debug == "1" || debug == "true"
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("config: server.host must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Autoplay.IntervalMs <= 0 {
		return fmt.Errorf("config: autoplay.interval_ms must be positive")
	}
	if c.Recorder.Enabled && c.Recorder.Path == "" {
		return fmt.Errorf("config: recorder.path required when the recorder is enabled")
	}
	return nil
}
