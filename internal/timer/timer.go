// Package timer is a frame-driven timer manager. Timers are keyed by opaque
// handles and only advance when the owner calls Advance with the frame delta,
// so every callback runs on the caller's goroutine.
package timer

import (
	"slices"
	"time"
)

// Handle identifies a scheduled timer. The zero Handle is never active.
type Handle struct {
	id uint64
}

// IsValid reports whether the handle was ever assigned a timer.
func (h Handle) IsValid() bool { return h.id != 0 }

type kind uint8

const (
	kindTimed kind = iota
	kindFrame
)

type entry struct {
	fn        func()
	kind      kind
	rate      time.Duration
	loop      bool
	remaining time.Duration
}

// Manager owns all timers of one world. It is not safe for concurrent use.
type Manager struct {
	nextID uint64
	timers map[uint64]*entry
	now    time.Duration
	delta  time.Duration
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		nextID: 1,
		timers: make(map[uint64]*entry),
	}
}

// SetTimer schedules fn every rate (loop) or once after rate.
// A rate <= 0 clears the handle instead.
func (m *Manager) SetTimer(h *Handle, fn func(), rate time.Duration, loop bool) {
	m.SetTimerWithDelay(h, fn, rate, loop, -1)
}

// SetTimerWithDelay is SetTimer with a distinct delay before the first call.
// A negative firstDelay uses rate.
func (m *Manager) SetTimerWithDelay(h *Handle, fn func(), rate time.Duration, loop bool, firstDelay time.Duration) {
	m.ClearTimer(h)
	if rate <= 0 || fn == nil {
		return
	}
	if firstDelay < 0 {
		firstDelay = rate
	}
	h.id = m.add(&entry{
		fn:        fn,
		kind:      kindTimed,
		rate:      rate,
		loop:      loop,
		remaining: firstDelay,
	})
}

// SetFrameTimer schedules fn once per Advance until the handle is cleared.
func (m *Manager) SetFrameTimer(h *Handle, fn func()) {
	m.ClearTimer(h)
	if fn == nil {
		return
	}
	h.id = m.add(&entry{fn: fn, kind: kindFrame, loop: true})
}

// ClearTimer cancels the timer behind h and invalidates the handle.
func (m *Manager) ClearTimer(h *Handle) {
	if h == nil || h.id == 0 {
		return
	}
	delete(m.timers, h.id)
	h.id = 0
}

// IsTimerActive reports whether h refers to a pending timer.
func (m *Manager) IsTimerActive(h Handle) bool {
	if h.id == 0 {
		return false
	}
	_, ok := m.timers[h.id]
	return ok
}

// Len returns the number of pending timers.
func (m *Manager) Len() int { return len(m.timers) }

// Now returns the total time advanced so far.
func (m *Manager) Now() time.Duration { return m.now }

// DeltaTime returns the dt of the frame being (or last) advanced.
func (m *Manager) DeltaTime() time.Duration { return m.delta }

// Advance moves the clock forward by dt and fires every due timer.
// Timers created while advancing wait for the next frame.
func (m *Manager) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	m.delta = dt
	m.now += dt

	ids := make([]uint64, 0, len(m.timers))
	for id := range m.timers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		e, ok := m.timers[id]
		if !ok {
			continue
		}
		if e.kind == kindFrame {
			e.fn()
			continue
		}
		e.remaining -= dt
		for e.remaining <= 0 {
			e.fn()
			// The callback may have cleared or replaced this timer.
			if cur, ok := m.timers[id]; !ok || cur != e {
				break
			}
			if !e.loop {
				delete(m.timers, id)
				break
			}
			e.remaining += e.rate
		}
	}
}

func (m *Manager) add(e *entry) uint64 {
	id := m.nextID
	m.nextID++
	m.timers[id] = e
	return id
}
