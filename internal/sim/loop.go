package sim

import (
	"time"

	"github.com/Garsondee/realmforge/internal/pkg/clock"
)

// Ticker is advanced by a Loop in fixed steps.
type Ticker interface {
	Tick(dt float64)
}

// Loop converts variable wall-clock frame time into fixed simulation
// steps. Ticks run strictly one after another on the caller's goroutine.
type Loop struct {
	target      Ticker
	clock       clock.Clock
	step        float64
	maxFrame    float64
	accumulator float64
	last        time.Time
	started     bool
	ticks       int
}

// NewLoop returns a loop driving target at step seconds per tick, taking
// at most maxFrame seconds of elapsed time into account per frame.
func NewLoop(target Ticker, c clock.Clock, step, maxFrame float64) *Loop {
	if c == nil {
		c = clock.New()
	}
	return &Loop{target: target, clock: c, step: step, maxFrame: maxFrame}
}

// NewWorldLoop builds a loop for w using the tick rules.
func NewWorldLoop(w *World, c clock.Clock) *Loop {
	t := w.Rules().Tick
	return NewLoop(w, c, t.Step(), t.MaxFrame)
}

// Frame measures the time since the previous frame and runs the ticks it
// pays for. The first call only starts the clock. It returns the number
// of ticks run.
func (l *Loop) Frame() int {
	now := l.clock.Now()
	if !l.started {
		l.started = true
		l.last = now
		return 0
	}
	elapsed := now.Sub(l.last).Seconds()
	l.last = now
	return l.Advance(elapsed)
}

// Advance adds frame seconds, capped, to the accumulator and drains it in
// whole steps.
func (l *Loop) Advance(frame float64) int {
	if frame < 0 {
		frame = 0
	}
	if frame > l.maxFrame {
		frame = l.maxFrame
	}
	l.accumulator += frame
	n := 0
	// The epsilon keeps exact multiples of step from losing a tick to
	// rounding.
	for l.accumulator+1e-9 >= l.step {
		l.target.Tick(l.step)
		l.accumulator -= l.step
		n++
	}
	if l.accumulator < 0 {
		l.accumulator = 0
	}
	l.ticks += n
	return n
}

// Alpha is the fraction of a step left in the accumulator, for
// interpolating rendered positions.
func (l *Loop) Alpha() float64 { return l.accumulator / l.step }

// Ticks is the total number of ticks run.
func (l *Loop) Ticks() int { return l.ticks }
