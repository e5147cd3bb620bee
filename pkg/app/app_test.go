package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseRunsEveryCloser(t *testing.T) {
	instance := NewInstance()
	var closed int32
	failure := errors.New("flush failed")
	instance.AddCloseFunc(func() error {
		atomic.AddInt32(&closed, 1)
		return nil
	})
	instance.AddCloseFunc(func() error {
		atomic.AddInt32(&closed, 1)
		return failure
	})

	err := instance.Close()
	require.ErrorIs(t, err, failure)
	assert.Equal(t, int32(2), atomic.LoadInt32(&closed))
	assert.ErrorIs(t, instance.Context().Err(), context.Canceled)

	require.NoError(t, instance.Close())
	assert.Equal(t, int32(2), atomic.LoadInt32(&closed))
}

func TestTimeoutContext(t *testing.T) {
	ctx, cancel := TimeoutContext(context.Background(), 0)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, time.Second)

	ctx, cancel = TimeoutContext(context.Background(), -1)
	defer cancel()
	_, ok = ctx.Deadline()
	assert.False(t, ok)
}
