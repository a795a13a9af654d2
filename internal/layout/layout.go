// Package layout packs and unpacks the 64-bit identifier layout.
//
// # ID Structure (64 bits, most significant first)
//
//	┌───┬──────────────────────────────┬──────────┬───────────┬────────────┐
//	│ 0 │ 41 bits: Timestamp (ms)      │ 5 bits:  │ 5 bits:   │ 12 bits:   │
//	│   │ since 2025-01-01T00:00:00Z   │ Worker   │ Process   │ Sequence   │
//	│   │                              │ (0-31)   │ (0-31)    │ (0-4095)   │
//	└───┴──────────────────────────────┴──────────┴───────────┴────────────┘
//
// The top bit is always zero, so every value also fits a signed int64.
//
// The layout is an implementation detail of the generator. Callers outside
// this module only ever see the decimal string form.
package layout

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// Epoch is 2025-01-01T00:00:00.000Z in Unix milliseconds. Changing it
	// changes the magnitude of every future ID, so it is fixed at build time.
	Epoch int64 = 1735689600000

	TimestampBits = 41
	WorkerBits    = 5
	ProcessBits   = 5
	SequenceBits  = 12

	// MaxTimestamp is the largest encodable offset from Epoch (2^41 - 1).
	MaxTimestamp int64 = -1 ^ (-1 << TimestampBits)
	MaxWorkerID  int64 = -1 ^ (-1 << WorkerBits)
	MaxProcessID int64 = -1 ^ (-1 << ProcessBits)
	MaxSequence  int64 = -1 ^ (-1 << SequenceBits)

	ProcessShift   = SequenceBits                            // 12
	WorkerShift    = SequenceBits + ProcessBits              // 17
	TimestampShift = SequenceBits + ProcessBits + WorkerBits // 22
)

var (
	// ErrTimestampRange is returned when a timestamp offset does not fit in
	// 41 bits or lies before Epoch.
	ErrTimestampRange = errors.New("timestamp out of range")

	// ErrFieldRange is returned when worker, process or sequence exceed their width.
	ErrFieldRange = errors.New("field out of range")

	// ErrMalformed is returned when a decimal string is not a valid encoded ID.
	ErrMalformed = errors.New("malformed id")

	// ErrInvalidBitLayout is returned by BitLayout.Validate.
	ErrInvalidBitLayout = errors.New("invalid bit layout")
)

// Components are the unpacked fields of an encoded ID.
type Components struct {
	// Timestamp is milliseconds elapsed since Epoch.
	Timestamp int64
	WorkerID  int64
	ProcessID int64
	Sequence  int64
}

// Time returns the wall-clock instant the timestamp field refers to.
func (c Components) Time() time.Time {
	return time.UnixMilli(Epoch + c.Timestamp).UTC()
}

// Encode packs the four fields into a single value:
//
//	(timestamp << 22) | (workerID << 17) | (processID << 12) | sequence
//
// Values that do not fit their field are rejected instead of truncated.
func Encode(timestamp, workerID, processID, sequence int64) (uint64, error) {
	if timestamp < 0 || timestamp > MaxTimestamp {
		return 0, errors.Wrapf(ErrTimestampRange, "timestamp %d not in [0, %d]", timestamp, MaxTimestamp)
	}
	if workerID < 0 || workerID > MaxWorkerID {
		return 0, errors.Wrapf(ErrFieldRange, "worker id %d not in [0, %d]", workerID, MaxWorkerID)
	}
	if processID < 0 || processID > MaxProcessID {
		return 0, errors.Wrapf(ErrFieldRange, "process id %d not in [0, %d]", processID, MaxProcessID)
	}
	if sequence < 0 || sequence > MaxSequence {
		return 0, errors.Wrapf(ErrFieldRange, "sequence %d not in [0, %d]", sequence, MaxSequence)
	}

	return uint64(timestamp)<<TimestampShift |
		uint64(workerID)<<WorkerShift |
		uint64(processID)<<ProcessShift |
		uint64(sequence), nil
}

// Format renders an encoded value in its base-10 wire form.
func Format(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// Decode is the inverse of Encode.
func Decode(v uint64) Components {
	return Components{
		Timestamp: int64(v>>TimestampShift) & MaxTimestamp,
		WorkerID:  int64(v>>WorkerShift) & MaxWorkerID,
		ProcessID: int64(v>>ProcessShift) & MaxProcessID,
		Sequence:  int64(v) & MaxSequence,
	}
}

// DecodeString parses the decimal wire form and unpacks it.
func DecodeString(s string) (Components, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Components{}, errors.Wrapf(ErrMalformed, "%q: %v", s, err)
	}
	if v > math.MaxInt64 {
		return Components{}, errors.Wrapf(ErrMalformed, "%q: sign bit set", s)
	}
	return Decode(v), nil
}

// BitLayout describes how the 63 usable bits are split.
type BitLayout struct {
	TimestampBits int
	WorkerBits    int
	ProcessBits   int
	SequenceBits  int

	// TimeUnit is the precision of the timestamp field.
	TimeUnit time.Duration
}

// Default is the only layout the generator emits.
var Default = BitLayout{
	TimestampBits: TimestampBits,
	WorkerBits:    WorkerBits,
	ProcessBits:   ProcessBits,
	SequenceBits:  SequenceBits,
	TimeUnit:      time.Millisecond,
}

// Validate checks that every field is positive, the widths sum to 63 and the
// time unit is positive.
func (l BitLayout) Validate() error {
	fields := []struct {
		name string
		bits int
	}{
		{"timestamp", l.TimestampBits},
		{"worker", l.WorkerBits},
		{"process", l.ProcessBits},
		{"sequence", l.SequenceBits},
	}
	for _, f := range fields {
		if f.bits <= 0 {
			return errors.Wrapf(ErrInvalidBitLayout, "%s bits must be positive, got %d", f.name, f.bits)
		}
	}

	total := l.TimestampBits + l.WorkerBits + l.ProcessBits + l.SequenceBits
	if total != 63 {
		return errors.Wrapf(ErrInvalidBitLayout, "total bits must equal 63, got %d (%d+%d+%d+%d)",
			total, l.TimestampBits, l.WorkerBits, l.ProcessBits, l.SequenceBits)
	}
	if l.TimeUnit <= 0 {
		return errors.Wrapf(ErrInvalidBitLayout, "time unit must be positive, got %v", l.TimeUnit)
	}
	return nil
}

// Shifts returns the left-shift applied to each field.
func (l BitLayout) Shifts() (timestampShift, workerShift, processShift int) {
	processShift = l.SequenceBits
	workerShift = l.SequenceBits + l.ProcessBits
	timestampShift = l.SequenceBits + l.ProcessBits + l.WorkerBits
	return
}

// Capacity holds the theoretical limits of a BitLayout.
type Capacity struct {
	MaxWorkers   int64
	MaxProcesses int64

	// MaxInstances is MaxWorkers * MaxProcesses, the number of distinct
	// generating replicas.
	MaxInstances int64

	// MaxSequence is the number of IDs one replica can mint per time unit.
	MaxSequence int64

	Lifespan            time.Duration
	ThroughputPerWorker int64
	TimeUnit            time.Duration
}

// Capacity computes lifespan, replica count and throughput for the layout.
func (l BitLayout) Capacity() Capacity {
	maxWorkers := int64(1) << l.WorkerBits
	maxProcesses := int64(1) << l.ProcessBits
	maxSequence := int64(1) << l.SequenceBits

	// float64 avoids overflowing time.Duration for long time units.
	nanos := float64(int64(1)<<l.TimestampBits) * float64(l.TimeUnit)
	if nanos > math.MaxInt64 {
		nanos = math.MaxInt64
	}

	return Capacity{
		MaxWorkers:          maxWorkers,
		MaxProcesses:        maxProcesses,
		MaxInstances:        maxWorkers * maxProcesses,
		MaxSequence:         maxSequence,
		Lifespan:            time.Duration(nanos),
		ThroughputPerWorker: maxSequence * int64(time.Second) / int64(l.TimeUnit),
		TimeUnit:            l.TimeUnit,
	}
}

// Years is the lifespan rounded down to whole years.
func (c Capacity) Years() int {
	return int(c.Lifespan.Hours() / 24 / 365)
}

func (c Capacity) String() string {
	return fmt.Sprintf("Instances: %d (%d workers x %d processes), ThroughputPerWorker: %d/sec, Lifespan: %d years, TimeUnit: %v",
		c.MaxInstances, c.MaxWorkers, c.MaxProcesses, c.ThroughputPerWorker, c.Years(), c.TimeUnit)
}
