package layout

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestEpochIs2025(t *testing.T) {
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if Epoch != want {
		t.Fatalf("Epoch = %d, want %d", Epoch, want)
	}
}

func TestConstants(t *testing.T) {
	tests := []struct {
		name string
		got  int64
		want int64
	}{
		{"MaxTimestamp", MaxTimestamp, 1<<41 - 1},
		{"MaxWorkerID", MaxWorkerID, 31},
		{"MaxProcessID", MaxProcessID, 31},
		{"MaxSequence", MaxSequence, 4095},
		{"ProcessShift", ProcessShift, 12},
		{"WorkerShift", WorkerShift, 17},
		{"TimestampShift", TimestampShift, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestEncode_BitPositions(t *testing.T) {
	tests := []struct {
		name                     string
		ts, worker, process, seq int64
		want                     uint64
	}{
		{"zero", 0, 0, 0, 0, 0},
		{"sequence only", 0, 0, 0, 7, 7},
		{"process only", 0, 0, 1, 0, 1 << 12},
		{"worker only", 0, 1, 0, 0, 1 << 17},
		{"timestamp only", 1, 0, 0, 0, 1 << 22},
		{"all low fields full", 0, 31, 31, 4095, 1<<22 - 1},
		{"example", 1000, 26, 30, 5, 1000<<22 | 26<<17 | 30<<12 | 5},
		{"max", MaxTimestamp, 31, 31, 4095, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.ts, tt.worker, tt.process, tt.seq)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEncode_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name                     string
		ts, worker, process, seq int64
		want                     error
	}{
		{"negative timestamp", -1, 0, 0, 0, ErrTimestampRange},
		{"timestamp overflow", MaxTimestamp + 1, 0, 0, 0, ErrTimestampRange},
		{"worker too large", 0, 32, 0, 0, ErrFieldRange},
		{"negative worker", 0, -1, 0, 0, ErrFieldRange},
		{"process too large", 0, 0, 32, 0, ErrFieldRange},
		{"sequence too large", 0, 0, 0, 4096, ErrFieldRange},
		{"negative sequence", 0, 0, 0, -1, ErrFieldRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.ts, tt.worker, tt.process, tt.seq)
			if !errors.Is(err, tt.want) {
				t.Errorf("Encode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_InvertsEncode(t *testing.T) {
	cases := []Components{
		{0, 0, 0, 0},
		{1, 2, 3, 4},
		{123456789, 26, 30, 4095},
		{MaxTimestamp, 31, 31, 4095},
		{MaxTimestamp, 0, 0, 0},
	}
	for _, c := range cases {
		v, err := Encode(c.Timestamp, c.WorkerID, c.ProcessID, c.Sequence)
		if err != nil {
			t.Fatalf("Encode(%+v) error = %v", c, err)
		}
		if got := Decode(v); got != c {
			t.Errorf("Decode(Encode(%+v)) = %+v", c, got)
		}
		got, err := DecodeString(Format(v))
		if err != nil {
			t.Fatalf("DecodeString() error = %v", err)
		}
		if got != c {
			t.Errorf("DecodeString(Format(%+v)) = %+v", c, got)
		}
	}
}

func TestDecodeString_Malformed(t *testing.T) {
	for _, s := range []string{"", "abc", "12.3", "-1", "18446744073709551616", "9223372036854775808"} {
		if _, err := DecodeString(s); !errors.Is(err, ErrMalformed) {
			t.Errorf("DecodeString(%q) error = %v, want ErrMalformed", s, err)
		}
	}
}

func TestComponents_Time(t *testing.T) {
	c := Components{Timestamp: 1500}
	want := time.Date(2025, 1, 1, 0, 0, 1, 500*int(time.Millisecond), time.UTC)
	if got := c.Time(); !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
}

func TestBitLayout_Validate(t *testing.T) {
	if err := Default.Validate(); err != nil {
		t.Fatalf("Default.Validate() error = %v", err)
	}

	invalid := []struct {
		name   string
		layout BitLayout
	}{
		{"sum 62", BitLayout{41, 5, 5, 11, time.Millisecond}},
		{"sum 64", BitLayout{42, 5, 5, 12, time.Millisecond}},
		{"zero process bits", BitLayout{46, 5, 0, 12, time.Millisecond}},
		{"negative worker bits", BitLayout{51, -1, 1, 12, time.Millisecond}},
		{"zero time unit", BitLayout{41, 5, 5, 12, 0}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.layout.Validate(); !errors.Is(err, ErrInvalidBitLayout) {
				t.Errorf("Validate() error = %v, want ErrInvalidBitLayout", err)
			}
		})
	}
}

func TestBitLayout_Shifts(t *testing.T) {
	ts, worker, process := Default.Shifts()
	if ts != TimestampShift || worker != WorkerShift || process != ProcessShift {
		t.Errorf("Shifts() = (%d, %d, %d), want (%d, %d, %d)",
			ts, worker, process, TimestampShift, WorkerShift, ProcessShift)
	}
}

func TestBitLayout_Capacity(t *testing.T) {
	c := Default.Capacity()

	if c.MaxWorkers != 32 || c.MaxProcesses != 32 || c.MaxInstances != 1024 {
		t.Errorf("instances = %d x %d = %d, want 32 x 32 = 1024", c.MaxWorkers, c.MaxProcesses, c.MaxInstances)
	}
	if c.MaxSequence != 4096 {
		t.Errorf("MaxSequence = %d, want 4096", c.MaxSequence)
	}
	if c.ThroughputPerWorker != 4096000 {
		t.Errorf("ThroughputPerWorker = %d, want 4096000", c.ThroughputPerWorker)
	}
	if years := c.Years(); years != 69 {
		t.Errorf("Years() = %d, want 69", years)
	}
	if c.String() == "" {
		t.Error("String() is empty")
	}
}
