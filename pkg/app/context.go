package app

import (
	"context"
	"time"
)

const DefaultTimeout = time.Minute

// TimeoutContext bounds a single command. A zero duration means
// DefaultTimeout, a negative one no deadline.
func TimeoutContext(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration < 0 {
		return context.WithCancel(parent)
	}
	if duration == 0 {
		duration = DefaultTimeout
	}
	return context.WithTimeout(parent, duration)
}
