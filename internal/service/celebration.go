package service

import (
	"sync"
	"time"
)

// Timer is the cancelable handle returned by an AfterFunc implementation.
type Timer interface {
	Stop() bool
}

type AfterFunc func(d time.Duration, fn func()) Timer

type CelebrationOption func(*Celebration)

// WithAfterFunc replaces time.AfterFunc, mostly for tests.
func WithAfterFunc(afterFunc AfterFunc) CelebrationOption {
	return func(that *Celebration) {
		that.afterFunc = afterFunc
	}
}

// Celebration is the fire-once visual effect shown after a win.
// Each Start bumps a generation counter so a timer armed for an older
// celebration can never switch off a newer one.
type Celebration struct {
	mu         sync.Mutex
	duration   time.Duration
	afterFunc  AfterFunc
	onExpire   func()
	timer      Timer
	generation uint64
	active     bool
}

func NewCelebration(duration time.Duration, onExpire func(), opts ...CelebrationOption) *Celebration {
	celebration := &Celebration{
		duration: duration,
		onExpire: onExpire,
		afterFunc: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
	}

	for _, opt := range opts {
		opt(celebration)
	}

	return celebration
}

// Start activates the effect and arms its expiry, replacing any pending timer.
func (that *Celebration) Start() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopTimer()

	that.generation++
	that.active = true

	generation := that.generation
	that.timer = that.afterFunc(that.duration, func() {
		that.expire(generation)
	})
}

// Stop deactivates the effect immediately. It reports whether the effect was active.
func (that *Celebration) Stop() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopTimer()
	that.generation++

	wasActive := that.active
	that.active = false

	return wasActive
}

func (that *Celebration) Active() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.active
}

func (that *Celebration) expire(generation uint64) {
	that.mu.Lock()
	if generation != that.generation || !that.active {
		that.mu.Unlock()
		return
	}

	that.active = false
	that.timer = nil
	that.mu.Unlock()

	if that.onExpire != nil {
		that.onExpire()
	}
}

func (that *Celebration) stopTimer() {
	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}
}
