// Package clock abstracts deferred and periodic callbacks so the pacer can be
// driven by runtime timers in production and by a manual clock in tests.
package clock

import (
	"sync"
	"time"
)

// Timer cancels a scheduled callback.
type Timer interface {
	// Stop prevents future invocations. It reports whether the callback was
	// still pending.
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls fn once after delay.
	AfterFunc(delay time.Duration, fn func()) Timer
	// Every calls fn repeatedly, once per interval, until stopped.
	Every(interval time.Duration, fn func()) Timer
}

// Real returns a Clock backed by the Go runtime timers.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}

func (realClock) Every(interval time.Duration, fn func()) Timer {
	ticker := time.NewTicker(interval)
	periodic := &realTicker{
		ticker: ticker,
		stopCh: make(chan struct{}),
	}
	go periodic.run(fn)
	return periodic
}

type realTicker struct {
	ticker *time.Ticker
	stopCh chan struct{}
	once   sync.Once
}

func (periodic *realTicker) run(fn func()) {
	for {
		select {
		case <-periodic.stopCh:
			return
		case <-periodic.ticker.C:
			fn()
		}
	}
}

func (periodic *realTicker) Stop() bool {
	stopped := false
	periodic.once.Do(func() {
		periodic.ticker.Stop()
		close(periodic.stopCh)
		stopped = true
	})
	return stopped
}
