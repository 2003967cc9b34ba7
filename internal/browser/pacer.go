package browser

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer produces the randomized pauses that make a session look operated by
// a person: a few seconds after every navigation and a fraction of a second
// between typed characters. Both intervals are sampled uniformly.
type Pacer struct {
	minPause, maxPause time.Duration
	minKey, maxKey     time.Duration

	// int64N returns a value in [0, n). Tests replace it.
	int64N func(n int64) int64
	// sleep waits for d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a Pacer for the given bounds. A max below its min is raised to the min.
func NewPacer(minPause, maxPause, minKey, maxKey time.Duration) *Pacer {
	return &Pacer{
		minPause: minPause,
		maxPause: max(minPause, maxPause),
		minKey:   minKey,
		maxKey:   max(minKey, maxKey),
		int64N:   rand.Int64N,
		sleep:    sleepContext,
	}
}

// NoPacer returns a Pacer that never waits.
func NoPacer() *Pacer {
	return NewPacer(0, 0, 0, 0)
}

// WithSleep returns a copy of p that waits with fn. Tests use it to record
// the sampled delays instead of sleeping.
func (p *Pacer) WithSleep(fn func(ctx context.Context, d time.Duration) error) *Pacer {
	cp := *p
	cp.sleep = fn
	return &cp
}

// Pause waits a uniformly sampled navigation delay.
func (p *Pacer) Pause(ctx context.Context) error {
	return p.sleep(ctx, p.sample(p.minPause, p.maxPause))
}

// Keystroke waits a uniformly sampled inter-character delay.
func (p *Pacer) Keystroke(ctx context.Context) error {
	return p.sleep(ctx, p.sample(p.minKey, p.maxKey))
}

func (p *Pacer) sample(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(p.int64N(int64(hi-lo)+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
