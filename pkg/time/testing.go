package ltime

import (
	"time"

	"pgregory.net/rapid"
)

// Instants between 2001 and 2286, whole seconds like the timestamps the
// service hands out.
var (
	minTestingUnix int64 = 1_000_000_000
	maxTestingUnix int64 = 9_999_999_999
)

func TestingTimeGenerator() *rapid.Generator[time.Time] {
	return rapid.Custom(func(t *rapid.T) time.Time {
		return time.Unix(rapid.Int64Range(minTestingUnix, maxTestingUnix).Draw(t, "unix"), 0)
	})
}

// TestingDurationGenerator draws durations from zero up to max.
func TestingDurationGenerator(max time.Duration) *rapid.Generator[time.Duration] {
	return rapid.Custom(func(t *rapid.T) time.Duration {
		return time.Duration(rapid.Int64Range(0, int64(max)).Draw(t, "duration"))
	})
}
