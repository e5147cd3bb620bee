package ltest

import (
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// T is what test fixtures need from *testing.T, so that they can also be
// built inside a rapid property.
type T interface {
	Helper()
	Cleanup(func())
	require.TestingT
}

// RapidT adapts a *rapid.T. Cleanups run when RunCleanup is called, usually
// deferred at the top of the property.
type RapidT struct {
	*rapid.T
	cleanups []func()
}

func NewRapidT(t *rapid.T) *RapidT {
	return &RapidT{T: t}
}

func (r *RapidT) Helper() {}

func (r *RapidT) Cleanup(f func()) {
	r.cleanups = append(r.cleanups, f)
}

// RunCleanup runs the registered cleanups, last registered first.
func (r *RapidT) RunCleanup() {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		r.cleanups[i]()
	}
	r.cleanups = nil
}

var _ T = &RapidT{}
