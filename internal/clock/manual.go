package clock

import (
	"sync"
	"time"
)

// Manual is a Clock that only moves when Advance is called. Due callbacks run
// synchronously on the caller's goroutine, ordered by deadline and then by
// the order they were armed.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	entries []*manualEntry
}

type manualEntry struct {
	clock    *Manual
	when     time.Time
	seq      uint64
	interval time.Duration
	fn       func()
}

// NewManual creates a Manual clock positioned at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (manual *Manual) Now() time.Time {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.now
}

// AfterFunc arms a single-shot callback.
func (manual *Manual) AfterFunc(delay time.Duration, fn func()) Timer {
	return manual.schedule(delay, 0, fn)
}

// Every arms a periodic callback. Non-positive intervals are treated as one
// nanosecond.
func (manual *Manual) Every(interval time.Duration, fn func()) Timer {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return manual.schedule(interval, interval, fn)
}

// Advance moves the clock forward by delta, firing every callback that
// becomes due, including callbacks armed by callbacks fired on the way.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	target := manual.now.Add(delta)
	manual.mu.Unlock()

	for {
		manual.mu.Lock()
		entry := manual.nextDueLocked(target)
		if entry == nil {
			manual.now = target
			manual.mu.Unlock()
			return
		}
		manual.now = entry.when
		if entry.interval > 0 {
			manual.seq++
			entry.seq = manual.seq
			entry.when = entry.when.Add(entry.interval)
		} else {
			manual.removeLocked(entry)
		}
		fn := entry.fn
		manual.mu.Unlock()

		fn()
	}
}

// Pending returns the number of armed callbacks.
func (manual *Manual) Pending() int {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return len(manual.entries)
}

func (manual *Manual) schedule(delay, interval time.Duration, fn func()) Timer {
	if delay < 0 {
		delay = 0
	}
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.seq++
	entry := &manualEntry{
		clock:    manual,
		when:     manual.now.Add(delay),
		seq:      manual.seq,
		interval: interval,
		fn:       fn,
	}
	manual.entries = append(manual.entries, entry)
	return entry
}

func (manual *Manual) nextDueLocked(target time.Time) *manualEntry {
	var next *manualEntry
	for _, entry := range manual.entries {
		if entry.when.After(target) {
			continue
		}
		if next == nil || entry.when.Before(next.when) || (entry.when.Equal(next.when) && entry.seq < next.seq) {
			next = entry
		}
	}
	return next
}

func (manual *Manual) removeLocked(target *manualEntry) bool {
	for index, entry := range manual.entries {
		if entry == target {
			manual.entries = append(manual.entries[:index], manual.entries[index+1:]...)
			return true
		}
	}
	return false
}

func (entry *manualEntry) Stop() bool {
	entry.clock.mu.Lock()
	defer entry.clock.mu.Unlock()
	return entry.clock.removeLocked(entry)
}
