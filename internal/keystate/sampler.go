package keystate

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned where no keyboard query exists for the platform.
var ErrUnsupported = errors.New("key state query not supported on this platform")

// Checker reports whether a key is physically held right now.
type Checker interface {
	Held(key Key) (bool, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(Key) (bool, error)

func (f CheckerFunc) Held(key Key) (bool, error) { return f(key) }

// Sampler polls a Checker over a short window and reports the key as held
// if any sample reads pressed. A zero Window takes a single sample.
type Sampler struct {
	Checker  Checker
	Window   time.Duration
	Interval time.Duration
}

// Held samples key until a pressed reading, the window elapses, or ctx is
// done. The error is non-nil only when no sample succeeded; callers treat
// that as not held.
func (s Sampler) Held(ctx context.Context, key Key) (bool, error) {
	if s.Checker == nil {
		return false, ErrUnsupported
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 25 * time.Millisecond
	}
	deadline := time.Now().Add(s.Window)

	var lastErr error
	succeeded := false
	for {
		held, err := s.Checker.Held(key)
		switch {
		case err != nil:
			lastErr = err
		case held:
			return true, nil
		default:
			succeeded = true
		}
		if s.Window <= 0 || !time.Now().Before(deadline) {
			break
		}
		wait := min(interval, time.Until(deadline))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			if succeeded {
				return false, nil
			}
			return false, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
	}
	if succeeded {
		return false, nil
	}
	return false, lastErr
}
