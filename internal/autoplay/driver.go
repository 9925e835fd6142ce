// Package autoplay turns the manual step button into continuous play: a
// fixed-cadence ticker that asks the agent process for one action per tick
// while running.
package autoplay

import (
	"context"
	"sync"
	"time"

	"wumpuswatch/internal/logging"
)

// DefaultInterval is the tick cadence of continuous play.
const DefaultInterval = 200 * time.Millisecond

// Stepper issues one forward step of the agent.
type Stepper interface {
	Step(ctx context.Context) error
}

// Terminal reports whether the latest known world state ended the game.
type Terminal interface {
	GameOver() bool
}

// Driver is a two-state machine, idle or running. While running it invokes
// Step on every tick. Ticks fire on wall-clock cadence regardless of whether
// the previous step has completed; slow steps overlap rather than stretch the
// rhythm of play.
type Driver struct {
	stepper  Stepper
	state    Terminal
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	closed  bool
}

// New builds an idle driver. A zero or negative interval falls back to
// DefaultInterval.
func New(stepper Stepper, state Terminal, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{
		stepper:  stepper,
		state:    state,
		interval: interval,
	}
}

// Running reports whether continuous play is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Start begins continuous play. No-op while already running or after Close.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running || d.closed {
		return
	}
	d.running = true
	d.stop = make(chan struct{})
	logging.Autoplay("running (interval %v)", d.interval)
	go d.loop(d.stop)
}

// Pause halts continuous play. In-flight steps are left to finish; only
// future ticks are cancelled. No-op while idle.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	d.running = false
	close(d.stop)
	d.stop = nil
	logging.Autoplay("paused")
}

// Close pauses and permanently retires the driver. The ticker never outlives
// disposal.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.running {
		d.running = false
		close(d.stop)
		d.stop = nil
	}
}

// pauseIfCurrent stops the driver only if the given run is still the live
// one, so a stale loop racing a manual pause/start cannot kill the new run.
func (d *Driver) pauseIfCurrent(stop chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running || d.stop != stop {
		return
	}
	d.running = false
	close(d.stop)
	d.stop = nil
	logging.Autoplay("paused")
}

func (d *Driver) loop(stop chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if d.state.GameOver() {
				logging.Autoplay("game over, stopping")
				d.pauseIfCurrent(stop)
				return
			}
			go func() {
				if err := d.stepper.Step(context.Background()); err != nil {
					logging.AutoplayWarn("step failed: %v", err)
				}
			}()
		}
	}
}
