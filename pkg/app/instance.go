package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Instance owns the process context, cancelled on SIGINT or SIGTERM, and the
// resources to release when the process is done.
type Instance struct {
	mu      sync.Mutex
	closers []io.Closer
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewInstance() *Instance {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return &Instance{
		ctx:    ctx,
		cancel: cancel,
	}
}

func (instance *Instance) Context() context.Context {
	return instance.ctx
}

func ContextFromInstance(instance *Instance) context.Context {
	return instance.ctx
}
