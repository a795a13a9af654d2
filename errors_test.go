package snowflake

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// ClockError Tests
// ============================================================================

func TestClockError_Error(t *testing.T) {
	err := newClockError(1000, 1500, Identity{WorkerID: 7, ProcessID: 3})

	msg := err.Error()
	if !strings.Contains(msg, "clock moved backwards") {
		t.Error("Error message should contain 'clock moved backwards'")
	}
	if !strings.Contains(msg, "drift=500ms") {
		t.Errorf("Error message should contain drift amount, got: %s", msg)
	}
	if !strings.Contains(msg, "worker=7") || !strings.Contains(msg, "process=3") {
		t.Errorf("Error message should contain the identity, got: %s", msg)
	}
}

func TestClockError_Unwrap(t *testing.T) {
	err := newClockError(1000, 1500, Identity{})

	assert.ErrorIs(t, err, ErrClockRegression)
	assert.True(t, IsClockError(err))
	assert.False(t, IsConfigError(err))
	assert.False(t, IsFormatError(err))
}

func TestGetClockError(t *testing.T) {
	wrapped := errors.Wrap(newClockError(10, 12, Identity{}), "generate")

	clockErr, ok := GetClockError(wrapped)
	require.True(t, ok)
	assert.Equal(t, int64(2), clockErr.DriftMilliseconds)

	_, ok = GetClockError(ErrInvalidFormat)
	assert.False(t, ok)

	_, ok = GetClockError(nil)
	assert.False(t, ok)
}

// ============================================================================
// OverflowError Tests
// ============================================================================

func TestOverflowError(t *testing.T) {
	before := &OverflowError{Timestamp: Epoch - 5, Offset: -5, Max: 100}
	assert.Contains(t, before.Error(), "5ms before the epoch")
	assert.ErrorIs(t, before, ErrTimestampOverflow)
	assert.True(t, IsClockError(before))

	after := &OverflowError{Timestamp: Epoch + 101, Offset: 101, Max: 100}
	assert.Contains(t, after.Error(), "offset 101 exceeds 100")
}

// ============================================================================
// IdentityError Tests
// ============================================================================

func TestIdentityError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains []string
	}{
		{
			name:     "missing with source",
			err:      newIdentityMissingError("env:POD_UID"),
			sentinel: ErrIdentityMissing,
			contains: []string{"replica identity missing", "source=env:POD_UID"},
		},
		{
			name:     "missing without source",
			err:      newIdentityMissingError(""),
			sentinel: ErrIdentityMissing,
			contains: []string{"replica identity missing"},
		},
		{
			name:     "derivation",
			err:      newIdentityDerivationError("flag", errors.New("boom")),
			sentinel: ErrIdentityDerivation,
			contains: []string{"derivation failed", "source=flag", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.True(t, IsConfigError(tt.err))
			assert.False(t, IsClockError(tt.err))
			for _, s := range tt.contains {
				assert.Contains(t, tt.err.Error(), s)
			}

			var identErr *IdentityError
			require.True(t, errors.As(tt.err, &identErr))
		})
	}
}

func TestIdentityMissingHint(t *testing.T) {
	hints := errors.GetAllHints(newIdentityMissingError("env:POD_UID"))
	require.NotEmpty(t, hints)
	assert.Contains(t, hints[0], "POD_UID")
}

// ============================================================================
// FormatError / ConfigError Tests
// ============================================================================

func TestFormatError(t *testing.T) {
	err := &FormatError{Input: "12a", Reason: "non-digit character at offset 2"}

	assert.Equal(t, `invalid id format "12a": non-digit character at offset 2`, err.Error())
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.True(t, IsFormatError(err))
	assert.False(t, IsConfigError(err))
}

func TestConfigError(t *testing.T) {
	err := newConfigError(EnvClock, "sundial", "must be monotonic or wall")

	assert.Equal(t, `invalid configuration: SNOWFLAKE_CLOCK="sundial" (must be monotonic or wall)`, err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.True(t, IsConfigError(err))

	var cfgErr *ConfigError
	require.True(t, errors.As(errors.Wrap(err, "load"), &cfgErr))
	assert.Equal(t, EnvClock, cfgErr.Field)
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrIdentityMissing,
		ErrIdentityDerivation,
		ErrClockRegression,
		ErrTimestampOverflow,
		ErrInvalidFormat,
		ErrInvalidConfig,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
