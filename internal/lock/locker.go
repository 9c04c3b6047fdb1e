// Package lock serializes work on a single key (one leave request) across
// goroutines and, with Redis, across processes.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when the key stayed held for the whole wait bound.
var ErrNotAcquired = errors.New("lock: not acquired within wait bound")

// Locker hands out exclusive leases. The returned release func is safe to call
// more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Options bounds how long Acquire may block.
type Options struct {
	// Wait is the total time Acquire keeps retrying before ErrNotAcquired.
	Wait time.Duration
	// TTL caps how long a Redis lease survives a crashed holder.
	TTL time.Duration
	// InitialBackoff is doubled after each failed attempt up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultOptions() Options {
	return Options{
		Wait:           2 * time.Second,
		TTL:            15 * time.Second,
		InitialBackoff: 20 * time.Millisecond,
		MaxBackoff:     250 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Wait <= 0 {
		o.Wait = d.Wait
	}
	if o.TTL <= 0 {
		o.TTL = d.TTL
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = d.InitialBackoff
	}
	if o.MaxBackoff < o.InitialBackoff {
		o.MaxBackoff = o.InitialBackoff
	}
	return o
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
