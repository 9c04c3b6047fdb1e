package clock

import "time"

// Clock is injected wherever "now" matters so expiration can be tested
// without the wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the UTC wall clock.
func System() Clock { return systemClock{} }

// Func adapts a plain function, e.g. clock.Func(func() time.Time { return fixed }).
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Fixed always reports t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
