package snowflake

import (
	"runtime"
	"time"
)

// Clock returns the current time in Unix milliseconds.
type Clock interface {
	NowMillis() int64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

func (f ClockFunc) NowMillis() int64 { return f() }

// monotonicClock reads wall-clock time captured at construction plus the
// monotonic duration elapsed since, so NTP steps during the life of the
// process never make it go backwards.
type monotonicClock struct {
	start time.Time // keeps the monotonic reading; never call UTC() on it
}

// SystemClock returns the default clock: aligned with wall-clock time at
// creation and advancing with the process monotonic clock.
func SystemClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) NowMillis() int64 {
	return c.start.Add(time.Since(c.start)).UnixMilli()
}

type wallClock struct{}

// WallClock returns a clock that reads time.Now on every call. Unlike
// SystemClock it follows NTP corrections, including backward steps, which
// the generator reports as ErrClockRegression.
func WallClock() Clock {
	return wallClock{}
}

func (wallClock) NowMillis() int64 { return time.Now().UnixMilli() }

// WaitStrategy controls what the generator does between clock reads while
// waiting for the next millisecond after the sequence is exhausted.
type WaitStrategy interface {
	Pause()
	String() string
}

var (
	// SpinWait re-reads the clock in a tight loop.
	SpinWait WaitStrategy = spinWait{}

	// YieldWait calls runtime.Gosched between reads so other goroutines on
	// the same P can run. This is the default.
	YieldWait WaitStrategy = yieldWait{}
)

// SleepWait sleeps for d between reads. Useful where tight loops are
// expensive; keep d well under a millisecond.
func SleepWait(d time.Duration) WaitStrategy {
	return sleepWait{d: d}
}

type spinWait struct{}

func (spinWait) Pause()         {}
func (spinWait) String() string { return "spin" }

type yieldWait struct{}

func (yieldWait) Pause()         { runtime.Gosched() }
func (yieldWait) String() string { return "yield" }

type sleepWait struct{ d time.Duration }

func (w sleepWait) Pause()         { time.Sleep(w.d) }
func (w sleepWait) String() string { return "sleep(" + w.d.String() + ")" }
