package snowflake

import (
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Environment variables read by Config.FromEnv.
const (
	// EnvIdentityEnv overrides the name of the variable holding the replica
	// identity (default POD_UID).
	EnvIdentityEnv = "SNOWFLAKE_IDENTITY_ENV"

	// EnvWaitStrategy selects the sequence exhaustion wait: spin, yield or sleep.
	EnvWaitStrategy = "SNOWFLAKE_WAIT_STRATEGY"

	// EnvWaitSleep is the pause used by the sleep strategy, as a Go duration.
	EnvWaitSleep = "SNOWFLAKE_WAIT_SLEEP"

	// EnvClock selects the clock source: monotonic or wall.
	EnvClock = "SNOWFLAKE_CLOCK"
)

// DefaultWaitSleep is the pause used by the sleep wait strategy when none is configured.
const DefaultWaitSleep = 50 * time.Microsecond

// Config holds the options for a Generator.
//
// The epoch is deliberately absent: it is a build-time constant shared by
// every replica.
type Config struct {
	// Identity is the opaque replica identity string, e.g. the pod UID.
	// Required.
	Identity string

	// IdentitySource describes where Identity came from and is only used in
	// error messages, e.g. "env:POD_UID".
	IdentitySource string

	// Clock is the time source. Default: SystemClock().
	Clock Clock

	// Wait is used between clock reads while waiting out an exhausted
	// sequence. Default: YieldWait.
	Wait WaitStrategy

	// Logger receives construction and clock regression events.
	// Default: logr.Discard().
	Logger logr.Logger
}

// DefaultConfig returns a Config for the given replica identity with the
// default clock, wait strategy and a discarding logger.
func DefaultConfig(identity string) Config {
	return Config{
		Identity: identity,
		Clock:    SystemClock(),
		Wait:     YieldWait,
		Logger:   logr.Discard(),
	}
}

// ConfigFromEnv builds a Config from the process environment.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig("")
	if err := cfg.FromEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overlays environment variables onto c. The identity is only read
// when c.Identity is empty.
func (c *Config) FromEnv() error {
	if c.Identity == "" {
		name := DefaultIdentityEnv
		if v := os.Getenv(EnvIdentityEnv); v != "" {
			name = v
		}
		c.Identity = os.Getenv(name)
		c.IdentitySource = "env:" + name
	}

	sleep := DefaultWaitSleep
	if v := os.Getenv(EnvWaitSleep); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return newConfigError(EnvWaitSleep, v, "must be a non-negative Go duration")
		}
		sleep = d
	}
	if v := os.Getenv(EnvWaitStrategy); v != "" {
		w, err := ParseWaitStrategy(v, sleep)
		if err != nil {
			return err
		}
		c.Wait = w
	}

	if v := os.Getenv(EnvClock); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "monotonic":
			c.Clock = SystemClock()
		case "wall":
			c.Clock = WallClock()
		default:
			return newConfigError(EnvClock, v, "must be monotonic or wall")
		}
	}
	return nil
}

// ParseWaitStrategy maps a name (spin, yield, sleep) to a WaitStrategy.
// sleep is the pause for the sleep strategy.
func ParseWaitStrategy(name string, sleep time.Duration) (WaitStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "spin":
		return SpinWait, nil
	case "yield", "":
		return YieldWait, nil
	case "sleep":
		return SleepWait(sleep), nil
	default:
		return nil, newConfigError("wait strategy", name, "must be spin, yield or sleep")
	}
}

// setDefaults fills unset optional fields. The identity is checked when the
// Generator derives it.
func (c *Config) setDefaults() {
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.Wait == nil {
		c.Wait = YieldWait
	}
}
