package app

import (
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
)

type CloseFunc func() error

func (instance *Instance) AddCloseFunc(fn CloseFunc) {
	instance.AddCloser(&closeWrapper{fn: fn})
}

type closeWrapper struct {
	fn CloseFunc
}

func (w *closeWrapper) Close() error {
	return w.fn()
}

func (instance *Instance) AddCloser(closer io.Closer) {
	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.closers = append(instance.closers, closer)
}

// Close cancels the instance context and closes every registered closer
// concurrently. Closers are dropped once closed, a second call is a no-op.
func (instance *Instance) Close() error {
	instance.cancel()

	instance.mu.Lock()
	closers := instance.closers
	instance.closers = nil
	instance.mu.Unlock()

	var mu sync.Mutex
	var result *multierror.Error
	var wg sync.WaitGroup
	wg.Add(len(closers))
	for i := range closers {
		go func(closer io.Closer) {
			defer wg.Done()
			if err := closer.Close(); err != nil {
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
			}
		}(closers[i])
	}
	wg.Wait()

	return result.ErrorOrNil()
}
