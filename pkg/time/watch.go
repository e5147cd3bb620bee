package ltime

import "time"

// Watch tells the time. Code that compares against deadlines takes a Watch
// so that tests can move the clock.
type Watch interface {
	Now() time.Time
}

type WallWatch struct{}

func (WallWatch) Now() time.Time {
	return time.Now()
}

func NewWallWatch() WallWatch { return WallWatch{} }

// TestingWatch only moves when told to.
type TestingWatch struct {
	Current time.Time
}

func (f *TestingWatch) Now() time.Time {
	return f.Current
}

func (f *TestingWatch) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
