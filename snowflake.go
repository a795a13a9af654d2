// Package snowflake generates unique, time-ordered 64-bit identifiers across
// many concurrently running replicas without a coordination service.
//
// # Overview
//
// Each ID packs a millisecond timestamp, a (workerID, processID) pair
// derived from the replica identity string, and a per-millisecond sequence:
//
//	┌────────────────────────────────┬──────────┬───────────┬────────────┐
//	│ 41 bits: Timestamp (ms since   │ 5 bits:  │ 5 bits:   │ 12 bits:   │
//	│ 2025-01-01T00:00:00Z)          │ Worker   │ Process   │ Sequence   │
//	└────────────────────────────────┴──────────┴───────────┴────────────┘
//
// IDs leave the package as decimal strings (see ID). The layout itself is
// not part of the public contract.
//
// # Guarantees
//
//   - IDs from one Generator are strictly increasing in call order.
//   - IDs from Generators with different identities never collide.
//   - If the clock moves backwards the call fails with ErrClockRegression
//     instead of risking a duplicate; nothing is retried internally.
//   - When 4096 IDs have been issued in one millisecond the generator waits
//     for the next millisecond using the configured WaitStrategy.
//
// # Usage
//
//	gen, err := snowflake.NewFromEnv() // reads POD_UID
//	if err != nil {
//	    log.Fatal(err) // misconfigured replica, fail at startup
//	}
//	id, err := gen.Generate()
package snowflake

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/ecoma-io/snowflake/internal/layout"
)

// Epoch is the custom epoch (2025-01-01T00:00:00.000Z) in Unix milliseconds.
const Epoch = layout.Epoch

// Metrics holds runtime counters. All counters only increase.
type Metrics struct {
	Generated        int64 // IDs successfully generated
	ClockRegressions int64 // calls rejected because the clock moved backwards
	SequenceOverflow int64 // times the sequence was exhausted within one millisecond
	WaitTimeUs       int64 // total microseconds spent waiting for the next millisecond
}

// Generator issues IDs for one replica.
//
// Generator is safe for concurrent use. A single mutex covers the whole
// read clock, compare, advance sequence, update lastTimestamp step, so
// concurrent callers never observe the same (timestamp, sequence).
type Generator struct {
	mu            sync.Mutex
	lastTimestamp int64 // Unix ms of the last issued ID; -1 before the first
	sequence      int64

	identity Identity
	clock    Clock
	wait     WaitStrategy
	log      logr.Logger

	generated        atomic.Int64
	clockRegressions atomic.Int64
	sequenceOverflow atomic.Int64
	waitTimeUs       atomic.Int64
}

// New creates a Generator for the given replica identity string using the
// default configuration. An empty identity fails with ErrIdentityMissing.
func New(identity string) (*Generator, error) {
	return NewWithConfig(DefaultConfig(identity))
}

// NewFromEnv creates a Generator configured from the environment. See
// Config.FromEnv for the variables consulted.
func NewFromEnv() (*Generator, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Generator. The replica identity is derived here,
// once, so a misconfigured deployment fails at startup rather than on the
// first Generate call.
func NewWithConfig(cfg Config) (*Generator, error) {
	cfg.setDefaults()

	identity, err := deriveIdentity(cfg.Identity, cfg.IdentitySource)
	if err != nil {
		return nil, err
	}

	cfg.Logger.V(1).Info("derived replica identity",
		"workerID", identity.WorkerID,
		"processID", identity.ProcessID,
		"source", cfg.IdentitySource,
		"wait", cfg.Wait.String())

	return &Generator{
		lastTimestamp: -1,
		identity:      identity,
		clock:         cfg.Clock,
		wait:          cfg.Wait,
		log:           cfg.Logger,
	}, nil
}

// Generate returns the next ID.
//
// Errors:
//   - *ClockError (ErrClockRegression) if the clock reads earlier than the
//     previous ID's timestamp.
//   - *OverflowError (ErrTimestampOverflow) if the clock is before the epoch
//     or beyond the 41-bit range.
func (g *Generator) Generate() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.next()
	if err != nil {
		return ID{}, err
	}
	g.generated.Add(1)
	return ID{s: layout.Format(v)}, nil
}

// MustGenerate is like Generate but panics on error.
func (g *Generator) MustGenerate() ID {
	id, err := g.Generate()
	if err != nil {
		panic(err)
	}
	return id
}

// GenerateBatch returns count IDs while holding the lock once.
//
// If an error occurs part way, the IDs generated so far are returned along
// with the error; they are valid and unique.
func (g *Generator) GenerateBatch(count int) ([]ID, error) {
	if count <= 0 {
		return []ID{}, nil
	}

	ids := make([]ID, 0, count)

	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < count; i++ {
		v, err := g.next()
		if err != nil {
			g.generated.Add(int64(len(ids)))
			return ids, errors.Wrapf(err, "batch stopped after %d of %d", len(ids), count)
		}
		ids = append(ids, ID{s: layout.Format(v)})
	}
	g.generated.Add(int64(len(ids)))
	return ids, nil
}

// next computes the next encoded value. State is committed only once the
// value has been encoded successfully. g.mu must be held.
func (g *Generator) next() (uint64, error) {
	now := g.clock.NowMillis()

	if now < g.lastTimestamp {
		g.clockRegressions.Add(1)
		err := newClockError(now, g.lastTimestamp, g.identity)
		g.log.Error(err, "refusing to generate id", "driftMs", err.DriftMilliseconds)
		return 0, err
	}

	seq := int64(0)
	if now == g.lastTimestamp {
		seq = g.sequence + 1
		if seq > layout.MaxSequence {
			g.sequenceOverflow.Add(1)
			now = g.waitNextMillis()
			seq = 0
		}
	}

	offset := now - Epoch
	if offset < 0 || offset > layout.MaxTimestamp {
		return 0, &OverflowError{Timestamp: now, Offset: offset, Max: layout.MaxTimestamp}
	}

	v, err := layout.Encode(offset, g.identity.WorkerID, g.identity.ProcessID, seq)
	if err != nil {
		return 0, errors.Wrap(err, "encode id")
	}

	g.lastTimestamp = now
	g.sequence = seq
	return v, nil
}

// waitNextMillis blocks until the clock reads past lastTimestamp. The wait
// is bounded by the clock's own advance, about one millisecond.
func (g *Generator) waitNextMillis() int64 {
	start := time.Now()
	defer func() {
		waited := time.Since(start)
		g.waitTimeUs.Add(waited.Microseconds())
		g.log.V(2).Info("sequence exhausted, waited for next millisecond",
			"lastTimestamp", g.lastTimestamp, "waited", waited)
	}()

	for {
		now := g.clock.NowMillis()
		if now > g.lastTimestamp {
			return now
		}
		g.wait.Pause()
	}
}

// Identity returns the (workerID, processID) pair of this generator. It is
// fixed for the life of the Generator.
func (g *Generator) Identity() Identity {
	return g.identity
}

// GetMetrics returns a snapshot of the counters.
func (g *Generator) GetMetrics() Metrics {
	return Metrics{
		Generated:        g.generated.Load(),
		ClockRegressions: g.clockRegressions.Load(),
		SequenceOverflow: g.sequenceOverflow.Load(),
		WaitTimeUs:       g.waitTimeUs.Load(),
	}
}

// ResetMetrics zeroes all counters. Mostly useful in tests.
func (g *Generator) ResetMetrics() {
	g.generated.Store(0)
	g.clockRegressions.Store(0)
	g.sequenceOverflow.Store(0)
	g.waitTimeUs.Store(0)
}
