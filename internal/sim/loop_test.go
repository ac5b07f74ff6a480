package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mockclock "github.com/Garsondee/realmforge/internal/pkg/clock/mock"
)

type countingTicker struct {
	ticks int
	dts   []float64
}

func (c *countingTicker) Tick(dt float64) {
	c.ticks++
	c.dts = append(c.dts, dt)
}

func TestLoop_FirstFrameOnlyStartsClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	clk := mockclock.NewMockClock(ctrl)
	t0 := time.Unix(1000, 0)
	clk.EXPECT().Now().Return(t0)

	tk := &countingTicker{}
	l := NewLoop(tk, clk, 1.0/60, 0.25)
	assert.Zero(t, l.Frame())
	assert.Zero(t, tk.ticks)
}

func TestLoop_RunsWholeStepsAndCarriesRemainder(t *testing.T) {
	ctrl := gomock.NewController(t)
	clk := mockclock.NewMockClock(ctrl)
	t0 := time.Unix(1000, 0)
	gomock.InOrder(
		clk.EXPECT().Now().Return(t0),
		clk.EXPECT().Now().Return(t0.Add(25*time.Millisecond)),
		clk.EXPECT().Now().Return(t0.Add(50*time.Millisecond)),
	)

	tk := &countingTicker{}
	l := NewLoop(tk, clk, 1.0/60, 0.25)
	l.Frame()
	assert.Equal(t, 1, l.Frame(), "25ms pays for one 16.7ms step")
	assert.Equal(t, 2, l.Frame(), "8.3ms left over plus 25ms pays for two")
	assert.Equal(t, 3, tk.ticks)
	for _, dt := range tk.dts {
		assert.InDelta(t, 1.0/60, dt, 1e-12)
	}
}

func TestLoop_CapsLongFrames(t *testing.T) {
	ctrl := gomock.NewController(t)
	clk := mockclock.NewMockClock(ctrl)
	t0 := time.Unix(1000, 0)
	gomock.InOrder(
		clk.EXPECT().Now().Return(t0),
		clk.EXPECT().Now().Return(t0.Add(5*time.Second)),
	)

	tk := &countingTicker{}
	l := NewLoop(tk, clk, 1.0/60, 0.25)
	l.Frame()
	assert.Equal(t, 15, l.Frame(), "a stalled frame only catches up 0.25s")
	assert.Equal(t, 15, l.Ticks())
}

func TestLoop_AdvanceIgnoresNegativeTime(t *testing.T) {
	tk := &countingTicker{}
	l := NewLoop(tk, nil, 0.1, 0.25)
	assert.Zero(t, l.Advance(-1))
	assert.Equal(t, 2, l.Advance(0.25))
	assert.InDelta(t, 0.5, l.Alpha(), 1e-6)
}

func TestWorldLoop_DrivesWorldTicks(t *testing.T) {
	ctrl := gomock.NewController(t)
	clk := mockclock.NewMockClock(ctrl)
	t0 := time.Unix(1000, 0)
	gomock.InOrder(
		clk.EXPECT().Now().Return(t0),
		clk.EXPECT().Now().Return(t0.Add(100*time.Millisecond)),
	)

	w := NewWorld(nil)
	l := NewWorldLoop(w, clk)
	l.Frame()
	assert.Equal(t, 6, l.Frame())
	assert.Equal(t, 6, w.TickCount())
}
