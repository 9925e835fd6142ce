package autoplay

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingStepper struct {
	steps atomic.Int32
	err   error
}

func (s *countingStepper) Step(context.Context) error {
	s.steps.Add(1)
	return s.err
}

type terminalFlag struct {
	over atomic.Bool
}

func (f *terminalFlag) GameOver() bool { return f.over.Load() }

func TestDriver_StartStepsOnCadence(t *testing.T) {
	stepper := &countingStepper{}
	world := &terminalFlag{}
	d := New(stepper, world, 10*time.Millisecond)
	defer d.Close()

	assert.False(t, d.Running())
	d.Start()
	assert.True(t, d.Running())

	require.Eventually(t, func() bool {
		return stepper.steps.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	d.Pause()
	assert.False(t, d.Running())

	// No further ticks after pause.
	settled := stepper.steps.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, stepper.steps.Load(), settled+1,
		"at most one in-flight step may land after pause")
}

func TestDriver_StartWhileRunningIsNoOp(t *testing.T) {
	stepper := &countingStepper{}
	d := New(stepper, &terminalFlag{}, 10*time.Millisecond)
	defer d.Close()

	d.Start()
	d.Start()
	d.Start()
	assert.True(t, d.Running())
	d.Pause()
	d.Pause() // idempotent too
	assert.False(t, d.Running())
}

func TestDriver_SelfStopsOnGameOver(t *testing.T) {
	stepper := &countingStepper{}
	world := &terminalFlag{}
	d := New(stepper, world, 10*time.Millisecond)
	defer d.Close()

	d.Start()
	require.Eventually(t, func() bool {
		return stepper.steps.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	world.over.Store(true)

	require.Eventually(t, func() bool {
		return !d.Running()
	}, time.Second, 5*time.Millisecond, "driver must stop itself on a terminal snapshot")

	settled := stepper.steps.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, stepper.steps.Load(), settled+1,
		"no new ticks fire after the terminal one")
}

func TestDriver_StepErrorsDoNotStopPlay(t *testing.T) {
	stepper := &countingStepper{err: context.DeadlineExceeded}
	d := New(stepper, &terminalFlag{}, 10*time.Millisecond)
	defer d.Close()

	d.Start()
	require.Eventually(t, func() bool {
		return stepper.steps.Load() >= 3
	}, time.Second, 5*time.Millisecond, "errors are logged, cadence continues")
	assert.True(t, d.Running())
}

func TestDriver_CloseRetires(t *testing.T) {
	stepper := &countingStepper{}
	d := New(stepper, &terminalFlag{}, 10*time.Millisecond)

	d.Start()
	d.Close()
	assert.False(t, d.Running())

	d.Start()
	assert.False(t, d.Running(), "a closed driver never runs again")
}

func TestDriver_ZeroIntervalFallsBackToDefault(t *testing.T) {
	d := New(&countingStepper{}, &terminalFlag{}, 0)
	assert.Equal(t, DefaultInterval, d.interval)
	d.Close()
}
