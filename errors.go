// Package snowflake - errors.go provides the error taxonomy of the generator.
//
// Three kinds of failure reach callers, always synchronously:
//   - Configuration errors (ErrIdentityMissing, ErrIdentityDerivation,
//     ErrInvalidConfig): the process is not deployed correctly and no ID can
//     be generated until that is fixed.
//   - Clock errors (ErrClockRegression, ErrTimestampOverflow): the current
//     call failed; a later call may succeed once the clock catches up.
//   - Format errors (ErrInvalidFormat): a string handed to Parse is not a
//     plain non-negative integer literal.
//
// Each structured type below unwraps to its sentinel, so both errors.Is and
// errors.As work.

package snowflake

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrIdentityMissing is returned when no replica identity string is configured.
	ErrIdentityMissing = errors.New("replica identity missing")

	// ErrIdentityDerivation is returned when the identity digest cannot be computed.
	ErrIdentityDerivation = errors.New("replica identity derivation failed")

	// ErrClockRegression is returned when the clock reads earlier than the
	// timestamp of the previously issued ID.
	ErrClockRegression = errors.New("clock moved backwards")

	// ErrTimestampOverflow is returned when the clock lies before the epoch or
	// more than 2^41 milliseconds after it.
	ErrTimestampOverflow = errors.New("timestamp outside encodable range")

	// ErrInvalidFormat is returned when a string is not a valid ID literal.
	ErrInvalidFormat = errors.New("invalid id format")

	// ErrInvalidConfig is returned when Config validation fails.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IdentityError reports a replica identity that could not be turned into a
// (workerID, processID) pair.
type IdentityError struct {
	// Source names where the identity was read from, e.g. "env:POD_UID".
	Source string

	// Err is ErrIdentityMissing or ErrIdentityDerivation.
	Err error

	// Cause is the underlying failure, if any.
	Cause error
}

func (e *IdentityError) Error() string {
	msg := e.Err.Error()
	if e.Source != "" {
		msg = fmt.Sprintf("%s (source=%s)", msg, e.Source)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// ClockError carries the timing details of a detected clock regression.
//
// Example usage:
//
//	if _, err := gen.Generate(); err != nil {
//	    var clockErr *snowflake.ClockError
//	    if errors.As(err, &clockErr) {
//	        log.Error(err, "clock regression", "drift_ms", clockErr.DriftMilliseconds)
//	    }
//	}
type ClockError struct {
	// CurrentTimestamp is the clock reading in Unix milliseconds.
	CurrentTimestamp int64

	// LastTimestamp is the timestamp of the last issued ID in Unix milliseconds.
	LastTimestamp int64

	// DriftMilliseconds is LastTimestamp - CurrentTimestamp (always positive).
	DriftMilliseconds int64

	WorkerID  int64
	ProcessID int64
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("clock moved backwards: drift=%dms current=%d last=%d worker=%d process=%d",
		e.DriftMilliseconds, e.CurrentTimestamp, e.LastTimestamp, e.WorkerID, e.ProcessID)
}

func (e *ClockError) Unwrap() error {
	return ErrClockRegression
}

// OverflowError reports a clock reading the 41-bit timestamp cannot hold.
type OverflowError struct {
	// Timestamp is the clock reading in Unix milliseconds.
	Timestamp int64

	// Offset is Timestamp minus the epoch.
	Offset int64

	// Max is the largest encodable offset.
	Max int64
}

func (e *OverflowError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("timestamp overflow: clock %d is %dms before the epoch", e.Timestamp, -e.Offset)
	}
	return fmt.Sprintf("timestamp overflow: offset %d exceeds %d", e.Offset, e.Max)
}

func (e *OverflowError) Unwrap() error {
	return ErrTimestampOverflow
}

// FormatError reports a string rejected by Parse.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid id format %q: %s", e.Input, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

// ConfigError reports a configuration field that failed validation.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%q (%s)", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// IsConfigError reports whether err is a configuration error. These are
// fatal and non-retryable.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrIdentityMissing) ||
		errors.Is(err, ErrIdentityDerivation) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsClockError reports whether err is a clock error. The failed call may be
// retried by the caller after a delay.
func IsClockError(err error) bool {
	return errors.Is(err, ErrClockRegression) || errors.Is(err, ErrTimestampOverflow)
}

// IsFormatError reports whether err came from rejecting caller input.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// GetClockError extracts the ClockError from an error chain.
func GetClockError(err error) (*ClockError, bool) {
	var clockErr *ClockError
	if errors.As(err, &clockErr) {
		return clockErr, true
	}
	return nil, false
}

func newIdentityMissingError(source string) error {
	err := &IdentityError{Source: source, Err: ErrIdentityMissing}
	return errors.WithHint(err, "set the replica identity (e.g. POD_UID from the Kubernetes downward API)")
}

func newIdentityDerivationError(source string, cause error) error {
	return &IdentityError{Source: source, Err: ErrIdentityDerivation, Cause: cause}
}

func newClockError(current, last int64, id Identity) *ClockError {
	return &ClockError{
		CurrentTimestamp:  current,
		LastTimestamp:     last,
		DriftMilliseconds: last - current,
		WorkerID:          id.WorkerID,
		ProcessID:         id.ProcessID,
	}
}

func newConfigError(field, value, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
