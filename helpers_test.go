package snowflake

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecoma-io/snowflake/internal/layout"
)

// manualClock is a Clock frozen at a settable millisecond.
type manualClock struct {
	ms atomic.Int64
}

func newManualClock(ms int64) *manualClock {
	c := &manualClock{}
	c.ms.Store(ms)
	return c
}

func (c *manualClock) NowMillis() int64 { return c.ms.Load() }
func (c *manualClock) Set(ms int64)     { c.ms.Store(ms) }
func (c *manualClock) Advance(d int64)  { c.ms.Add(d) }

func newTestGenerator(t testing.TB, identity string, clock Clock, wait WaitStrategy) *Generator {
	t.Helper()
	cfg := DefaultConfig(identity)
	if clock != nil {
		cfg.Clock = clock
	}
	if wait != nil {
		cfg.Wait = wait
	}
	gen, err := NewWithConfig(cfg)
	require.NoError(t, err)
	return gen
}

func decode(t testing.TB, id ID) layout.Components {
	t.Helper()
	c, err := layout.DecodeString(id.String())
	require.NoError(t, err)
	return c
}
