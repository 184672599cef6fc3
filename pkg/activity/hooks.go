package activity

import (
	"context"
	"errors"
	"sync"
)

// Hook receives normalized activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, evt Event) error

// Notify calls f.
func (f HookFunc) Notify(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Hooks fans an event out to every hook. Events missing a verb or object are dropped.
type Hooks []Hook

// Notify normalizes evt and delivers it to each hook, joining any errors.
func (h Hooks) Notify(ctx context.Context, evt Event) error {
	if len(h) == 0 {
		return nil
	}
	evt = NormalizeEvent(evt)
	if !evt.Valid() {
		return nil
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook stores events in memory. Useful in tests and demos.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify appends the event.
func (c *CaptureHook) Notify(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, evt)
	return nil
}
